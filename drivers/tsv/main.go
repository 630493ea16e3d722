package main

import (
	driver "github.com/datazip-inc/tsvingest/drivers/tsv/driver"
	"github.com/datazip-inc/tsvingest/protocol"
)

func main() {
	protocol.Execute(&driver.TSV{})
}
