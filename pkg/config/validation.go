package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrNoCatchAll fails startup when the destination table has no fallback
// entry. Without one, uploads to unexpected folders would vanish silently;
// requiring a catch-all turns a latent data-loss bug into a config error.
var ErrNoCatchAll = errors.New("destinations must include a catch-all entry (one entry without a folder)")

// Validate checks the configuration for structural and semantic errors.
// Structural constraints live in struct tags; cross-field rules that tags
// cannot express are checked here.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			ve := verrs[0]
			return fmt.Errorf("invalid value for %s: failed %q constraint", ve.Namespace(), ve.Tag())
		}
		return err
	}

	if err := validateDestinations(cfg.Destinations); err != nil {
		return err
	}
	return validatePassiveRange(&cfg.FTP)
}

func validateDestinations(destinations []DestinationConfig) error {
	if len(destinations) == 0 {
		return errors.New("at least one destination is required")
	}

	seen := make(map[string]struct{}, len(destinations))
	catchAlls := 0
	for i, d := range destinations {
		if d.Folder == nil {
			catchAlls++
			continue
		}
		if *d.Folder == "" {
			return fmt.Errorf("destination %d: folder name must not be empty (omit folder for the catch-all)", i)
		}
		if _, dup := seen[*d.Folder]; dup {
			return fmt.Errorf("duplicate destination folder %q", *d.Folder)
		}
		seen[*d.Folder] = struct{}{}
	}

	if catchAlls == 0 {
		return ErrNoCatchAll
	}
	if catchAlls > 1 {
		return errors.New("only one catch-all destination is allowed")
	}
	return nil
}

func validatePassiveRange(cfg *FTPConfig) error {
	if cfg.PassivePortStart == 0 && cfg.PassivePortEnd == 0 {
		return nil
	}
	if cfg.PassivePortStart == 0 || cfg.PassivePortEnd == 0 {
		return errors.New("passive_port_start and passive_port_end must be set together")
	}
	if cfg.PassivePortEnd < cfg.PassivePortStart {
		return fmt.Errorf("passive port range %d-%d is inverted",
			cfg.PassivePortStart, cfg.PassivePortEnd)
	}
	return nil
}
