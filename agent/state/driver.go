package state

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverUpstash  = "upstash"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var ErrUnknownDriver = errors.New("unknown session store driver")

// ParseDriver normalises a STORE_DRIVER value. Empty selects the memory store.
func ParseDriver(driver string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(driver))
	switch d {
	case "":
		return DriverMemory, nil
	case DriverMemory, DriverRedis, DriverUpstash, DriverPostgres, DriverSQLite:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
