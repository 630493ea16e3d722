package mongodb

import (
	"github.com/datazip-inc/tsvingest/constants"
	"github.com/datazip-inc/tsvingest/utils"
)

type Config struct {
	URI        string `json:"uri" validate:"required"`
	Database   string `json:"database" validate:"required"`
	Collection string `json:"collection" validate:"required"`
	// ConnectTimeout in seconds, 0 keeps the driver default
	ConnectTimeout int `json:"connect_timeout" validate:"gte=0"`
	// RetryCount is the number of connection attempts, 0 uses the default
	RetryCount int `json:"backoff_retry_count" validate:"gte=0"`
}

func (c *Config) Validate() error {
	if err := utils.Validate(c); err != nil {
		return err
	}
	if c.RetryCount == 0 {
		c.RetryCount = constants.DefaultRetryCount
	}
	return nil
}
