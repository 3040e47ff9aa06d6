package badger

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/solwatch/solwatch/store"
)

type badgerTemp struct {
	*badgerStore
	Dir string
}

func (s badgerTemp) Close() error {
	defer os.RemoveAll(s.Dir)
	return s.badgerStore.Close()
}

func TestBadgerStore(t *testing.T) {
	t.Run("BadgerStore", func(t *testing.T) {
		store.TestSuite(t, func() store.Store {
			dir, err := ioutil.TempDir("", "solwatch-badger-test")
			if err != nil {
				t.Fatal(err)
			}
			opts := badger.DefaultOptions(dir).WithLogger(nil)
			s, err := Open(opts)
			if err != nil {
				t.Fatal(err)
			}
			return badgerTemp{s, dir}
		})
	})
}
