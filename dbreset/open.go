package dbreset

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/networkteam/go-sqllogger"
	_ "modernc.org/sqlite" // Pure Go SQLite driver, registered as "sqlite"
)

// ErrUnknownDriver is returned when no database/sql driver is registered under the name.
var ErrUnknownDriver = errors.New("unknown database driver")

// Open opens a database whose statements are logged at debug level to logger.
// The sqlite driver is built in; other drivers must be registered by the
// importing program.
func Open(driverName, dsn string, logger *slog.Logger) (*sql.DB, error) {
	if !slices.Contains(sql.Drivers(), driverName) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driverName)
	}

	// Only used to obtain the driver instance, sql.Open does not connect.
	opened, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", driverName, err)
	}
	drv := opened.Driver()
	_ = opened.Close()

	var connector driver.Connector
	if dc, ok := drv.(driver.DriverContext); ok {
		connector, err = dc.OpenConnector(dsn)
		if err != nil {
			return nil, fmt.Errorf("creating %s connector: %w", driverName, err)
		}
	} else {
		connector = &dsnConnector{driver: drv, dsn: dsn}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return sql.OpenDB(sqllogger.LoggingConnector(NewSQLLogger(logger), connector)), nil
}

// dsnConnector adapts a driver without DriverContext to driver.Connector.
type dsnConnector struct {
	driver driver.Driver
	dsn    string
}

// Connect implements driver.Connector interface
func (c *dsnConnector) Connect(ctx context.Context) (driver.Conn, error) {
	return c.driver.Open(c.dsn)
}

// Driver implements driver.Connector interface
func (c *dsnConnector) Driver() driver.Driver {
	return c.driver
}
