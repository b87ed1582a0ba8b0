package config

import (
	"github.com/go-playground/validator"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// MergeFile overlays the settings found in the config file on top of the
// values parsed from the environment and the command line. The file format
// is taken from the extension (yaml, toml, json).
func MergeFile(path string, cfg *GeoService) error {
	if path == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, "config file reading error")
	}

	if err := v.Unmarshal(cfg); err != nil {
		return errors.Wrap(err, "config file decoding error")
	}

	return nil
}

// Validate checks the parameter values of the service configuration.
func Validate(cfg *GeoService) error {

	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {

		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return errors.Wrap(err, "configuration validator error")
		}

		for _, err := range verrs {
			switch err.Tag() {
			case "required":
				return errors.Errorf("configuration validator error: parameter %s is required", err.Namespace())
			case "gt":
				return errors.Errorf("configuration validator error: parameter %s should be > %s. Actual value: %v", err.Field(), err.Param(), err.Value())
			case "url":
				return errors.Errorf("configuration validator error: parameter %s should be a string in URL format. Example: http://localhost:8080/; actual value: %s", err.Field(), err.Value())
			case "oneof":
				return errors.Errorf("configuration validator error: parameter %s should have one of the following value: %s; actual value: %s", err.Field(), err.Param(), err.Value())
			}
		}
		return errors.Wrap(err, "configuration validator error")
	}

	return nil
}
