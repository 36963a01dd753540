package driver_test

import (
	"testing"

	"github.com/zzzzlzzzz/alena/driver"
	"github.com/zzzzlzzzz/alena/driver/drivertest"
)

func TestMemStoreDriver(t *testing.T) {
	drivertest.Run(t, func(t *testing.T) driver.StoreDriver {
		return driver.NewMemStoreDriver()
	})
}
