package databaseaccess

import (
	"fmt"
	"strings"
	"time"

	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	"github.com/fxamacker/cbor/v2"
	"go.etcd.io/bbolt"
)

var (
	checkpointHeightBucket = []byte("checkpointHeight")
)

type checkpointHint struct {
	Height    uint64 `cbor:"1,keyasint"`
	UpdatedAt int64  `cbor:"2,keyasint"`
}

type BBoltDatabase struct {
	db *bbolt.DB
}

var _ core.HintsDB = (*BBoltDatabase)(nil)

func (bd *BBoltDatabase) Init(filePath string) error {
	db, err := bbolt.Open(filePath, 0660, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("could not open db: %w", err)
	}

	bd.db = db

	return db.Update(func(tx *bbolt.Tx) error {
		for _, bn := range [][]byte{checkpointHeightBucket} {
			if _, err := tx.CreateBucketIfNotExists(bn); err != nil {
				return fmt.Errorf("could not bucket: %s, err: %w", string(bn), err)
			}
		}

		return nil
	})
}

func (bd *BBoltDatabase) Close() error {
	return bd.db.Close()
}

func (bd *BBoltDatabase) SetCheckpointHeight(bridgeContract string, height uint64) error {
	return bd.db.Update(func(tx *bbolt.Tx) error {
		bytes, err := cbor.Marshal(checkpointHint{Height: height, UpdatedAt: time.Now().Unix()})
		if err != nil {
			return fmt.Errorf("could not marshal checkpoint height: %w", err)
		}

		if err := tx.Bucket(checkpointHeightBucket).Put(contractKey(bridgeContract), bytes); err != nil {
			return fmt.Errorf("checkpoint height write error: %w", err)
		}

		return nil
	})
}

func (bd *BBoltDatabase) GetCheckpointHeight(bridgeContract string) (uint64, error) {
	var result uint64

	err := bd.db.View(func(tx *bbolt.Tx) error {
		bytes := tx.Bucket(checkpointHeightBucket).Get(contractKey(bridgeContract))
		if bytes == nil {
			return nil
		}

		var hint checkpointHint

		if err := cbor.Unmarshal(bytes, &hint); err != nil {
			return fmt.Errorf("could not unmarshal checkpoint height: %w", err)
		}

		result = hint.Height

		return nil
	})
	if err != nil {
		return 0, err
	}

	return result, nil
}

func contractKey(bridgeContract string) []byte {
	return []byte(strings.ToLower(bridgeContract))
}
