package config

import (
	"reflect"

	"github.com/urfave/cli/v3"
)

// Flags returns one CLI flag per config key, named by FlagName, with the
// default value taken from DefaultConfig and the usage from the desc tag.
func Flags() []cli.Flag {
	var flags []cli.Flag
	collectFlags(reflect.ValueOf(DefaultConfig()), "", &flags)
	return flags
}

func collectFlags(val reflect.Value, prefix string, flags *[]cli.Flag) {
	typ := val.Type()
	for i := range typ.NumField() {
		field := typ.Field(i)

		key := configTagName(field)
		if key == "" {
			continue
		}
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		fieldVal := val.Field(i)
		usage := field.Tag.Get("desc")

		switch field.Type.Kind() {
		case reflect.Struct:
			collectFlags(fieldVal, fullKey, flags)
		case reflect.String:
			*flags = append(*flags, &cli.StringFlag{
				Name:  FlagName(fullKey),
				Value: fieldVal.String(),
				Usage: usage,
			})
		case reflect.Bool:
			*flags = append(*flags, &cli.BoolFlag{
				Name:  FlagName(fullKey),
				Value: fieldVal.Bool(),
				Usage: usage,
			})
		}
	}
}
