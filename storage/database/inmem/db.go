package inmemdb

import (
	"sync"

	"github.com/trezcool/classroom/core/session"
)

type (
	DB struct {
		session *sessionTable
	}

	sessionTable struct {
		sync.RWMutex
		table map[string]*session.Record
	}
)

func Open() *DB {
	return &DB{
		session: &sessionTable{table: make(map[string]*session.Record)},
	}
}
