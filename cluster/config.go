package cluster

import (
	"github.com/go-playground/validator/v10"

	"github.com/yourusername/ecewo/kinderr"
)

var configValidator = validator.New()

// Config is the master's configuration, validated (workers >= 1,
// port != 0) via go-playground/validator struct tags.
type Config struct {
	Workers int `validate:"gte=1"`
	Port    int `validate:"gt=0,lte=65535"`
}

// Validate enforces Config's invariants, returning a kinderr.Config error
// describing the first violation.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return kinderr.Wrap(kinderr.Config, "cluster: invalid configuration", err)
	}
	return nil
}
