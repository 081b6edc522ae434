// Package flagx lets several independent flag sets share one command line:
// the config loader and each CLI subcommand pick out only the flags they own.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the arguments from args that belong to allowedFlags,
// keeping each flag's value when it is passed as a separate argument.
//
// Supported forms:
//
//	-driver sqlite
//	-driver=sqlite
//
// A following argument that starts with "-" is never taken as a value, so
// boolean flags may precede other flags.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// Subcommand returns the first positional argument of args and the
// remaining arguments without it. Flags listed in valueFlags are stepped
// over together with their separate value, so they may precede the command.
// It returns "" and args unchanged when there is no positional argument.
func Subcommand(args []string, valueFlags []string) (string, []string) {
	skip := make(map[string]struct{}, len(valueFlags))
	for _, f := range valueFlags {
		skip[f] = struct{}{}
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if !strings.HasPrefix(arg, "-") {
			rest := make([]string, 0, len(args)-1)
			rest = append(rest, args[:i]...)
			return arg, append(rest, args[i+1:]...)
		}

		if strings.Contains(arg, "=") {
			continue
		}
		if _, ok := skip[arg]; ok && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
		}
	}

	return "", args
}

// JsonConfigFlags returns the config file path given with -c or -config,
// or "" when neither is present. Other arguments are ignored.
func JsonConfigFlags() string {
	var config string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	return config
}
