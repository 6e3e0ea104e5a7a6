package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"simblaster/pkg/contract"
	"simblaster/pkg/decay"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate

	walltimeRE = regexp.MustCompile(`^\d{1,3}:[0-5]\d:[0-5]\d$`)
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("walltime", func(fl validator.FieldLevel) bool {
			return walltimeRE.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("mailopts", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if s == "n" {
				return true
			}
			return s != "" && strings.Trim(s, "abe") == ""
		})
		validate = v
	})
	return validate
}

// Validate 对配置做静态校验：字段标签规则 + 跨字段规则。
// 返回的错误以 contract.ErrInvalidInput 包装。
func Validate(cfg Config) error {
	if err := structValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: %s fails %q (value %v): %w", trimNamespace(fe.Namespace()), fe.Tag(), fe.Value(), contract.ErrInvalidInput)
		}
		return fmt.Errorf("config: %w: %w", contract.ErrInvalidInput, err)
	}
	var hasCocktail, hasGun bool
	for _, ch := range cfg.Channels {
		if ch.Files == 0 || ch.Events == 0 {
			continue
		}
		switch contract.KindOf(ch.Notation) {
		case contract.KindCocktail:
			hasCocktail = true
		case contract.KindGun:
			hasGun = true
		}
	}
	if hasCocktail && (strings.TrimSpace(cfg.Cocktail.Setup) != "") == (cfg.Cocktail.Binning > 0) {
		return fmt.Errorf("config: cocktail channels need exactly one of cocktail.setup or cocktail.binning: %w", contract.ErrInvalidInput)
	}
	if hasGun && cfg.Gun.ThetaMax <= cfg.Gun.ThetaMin {
		return fmt.Errorf("config: gun.theta_max must exceed gun.theta_min: %w", contract.ErrInvalidInput)
	}
	return nil
}

// ValidateChannels 预先解析全部待模拟的 Pluto 通道表达式，返回首个语法错误。
func ValidateChannels(cfg Config) error {
	chs, _ := cfg.ChannelList()
	for _, ch := range chs {
		if contract.KindOf(ch.Notation) != contract.KindPluto {
			continue
		}
		rest, _ := contract.SplitRecoil(ch.Notation)
		if _, err := decay.Parse(rest); err != nil {
			return fmt.Errorf("config: channel %q: %w: %w", ch.Notation, contract.ErrChannelInvalid, err)
		}
	}
	return nil
}

// trimNamespace 去掉根类型名："Config.qsub.walltime" -> "qsub.walltime"。
func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
