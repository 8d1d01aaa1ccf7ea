package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitPostgres_InvalidDSN(t *testing.T) {
	db, sqlDB, err := InitPostgres("host=127.0.0.1 port=1 user=nobody dbname=nope sslmode=disable connect_timeout=1")

	assert.Error(t, err, "InitPostgres should fail when nothing listens on the port")
	assert.Nil(t, db)
	assert.Nil(t, sqlDB)
}

func TestInitPostgres_EmptyDSN(t *testing.T) {
	db, _, err := InitPostgres("")

	// gorm defers connection errors to the first ping, so either outcome is
	// acceptable as long as we don't panic
	if err == nil {
		sqlDB, dbErr := db.DB()
		if dbErr == nil {
			assert.Error(t, sqlDB.Ping())
		}
	}
}
