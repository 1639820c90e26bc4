package versioning

// Set via ldflags at build time
var (
	Version   = "dev"
	Commit    = ""
	Branch    = ""
	BuildTime = ""
)
