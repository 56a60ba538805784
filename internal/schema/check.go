package schema

import (
	"errors"
	"fmt"
	"os"

	"crf-service/internal/config"
)

// Provider is the only datasource provider the service runs against.
const Provider = "mysql"

// CheckOptions tunes Check.
type CheckOptions struct {
	// Generator, when set, must name a generator block of the schema.
	Generator string
	// Tables, when set, must each be the table of some model.
	Tables []string
	// LookupEnv resolves env("...") urls; os.LookupEnv when nil.
	LookupEnv func(key string) (string, bool)
}

// Check validates the datasource, generators and required tables of s. The database URL is
// parsed, never dialled, so a placeholder value passes.
func Check(s *Schema, opts CheckOptions) error {
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var errs []error

	switch len(s.Datasources) {
	case 0:
		errs = append(errs, errors.New("no datasource block"))
	case 1:
		errs = append(errs, checkDatasource(s.Datasources[0], lookup)...)
	default:
		errs = append(errs, fmt.Errorf("%d datasource blocks, expected one", len(s.Datasources)))
	}

	if opts.Generator != "" {
		if _, ok := s.Generator(opts.Generator); !ok {
			errs = append(errs, fmt.Errorf("generator %q is not defined", opts.Generator))
		}
	}

	if len(opts.Tables) > 0 {
		defined := make(map[string]bool, len(s.Models))
		for _, m := range s.Models {
			defined[m.Table()] = true
		}
		for _, t := range opts.Tables {
			if !defined[t] {
				errs = append(errs, fmt.Errorf("no model for table %q", t))
			}
		}
	}

	return errors.Join(errs...)
}

func checkDatasource(ds Block, lookup func(string) (string, bool)) []error {
	var errs []error

	provider, ok := StringValue(ds.Properties["provider"])
	if !ok {
		errs = append(errs, fmt.Errorf("datasource %s: provider must be a string", ds.Name))
	} else if provider != Provider {
		errs = append(errs, fmt.Errorf("datasource %s: provider %q, expected %q", ds.Name, provider, Provider))
	}

	raw, ok := ds.Properties["url"]
	if !ok {
		return append(errs, fmt.Errorf("datasource %s: url is missing", ds.Name))
	}

	url, literal := StringValue(raw)
	if !literal {
		name, ok := EnvName(raw)
		if !ok {
			return append(errs, fmt.Errorf("datasource %s: url must be a string or env(\"...\")", ds.Name))
		}
		url, ok = lookup(name)
		if !ok || url == "" {
			return append(errs, fmt.Errorf("datasource %s: environment variable %s is not set", ds.Name, name))
		}
	}

	if _, err := config.MySQLDSN(url); err != nil {
		errs = append(errs, fmt.Errorf("datasource %s: %w", ds.Name, err))
	}
	return errs
}
