// Package data implements the native data-class commands: jq (a narrow
// subset), yq, base64, envsubst (spec.md §4.7 "data").
package data

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"tierroute/internal/contracts"
	"tierroute/internal/native/shared"
	"gopkg.in/yaml.v3"
)

// Dispatch runs one data-class command.
func Dispatch(ctx context.Context, name string, argv []string, stdin string, env map[string]string) shared.Output {
	switch name {
	case "jq":
		return jq(argv, stdin)
	case "yq":
		return yq(argv, stdin)
	case "base64":
		return base64Cmd(argv, stdin)
	case "envsubst":
		return envsubst(stdin, env)
	default:
		return shared.Fail(127, "command not found: "+name)
	}
}

// jq supports: identity ".", nested property access ".a.b", and a trailing
// "| length" pipeline stage, per spec.md §4.7's documented minimal subset.
func jq(argv []string, stdin string) shared.Output {
	_, positional := shared.ParseFlags(argv)
	if len(positional) == 0 {
		return shared.Fail(2, "jq: missing filter")
	}
	filter := strings.TrimSpace(positional[0])

	var v interface{}
	if err := json.Unmarshal([]byte(stdin), &v); err != nil {
		return shared.Fail(1, "jq: invalid JSON input: "+err.Error())
	}

	wantLength := false
	if parts := strings.SplitN(filter, "|", 2); len(parts) == 2 && strings.TrimSpace(parts[1]) == "length" {
		filter = strings.TrimSpace(parts[0])
		wantLength = true
	}

	result := v
	if filter != "." && filter != "" {
		path := strings.Split(strings.TrimPrefix(filter, "."), ".")
		for _, seg := range path {
			if seg == "" {
				continue
			}
			m, ok := result.(map[string]interface{})
			if !ok {
				return shared.Fail(1, "jq: "+seg+" is not an object")
			}
			result, ok = m[seg]
			if !ok {
				result = nil
			}
		}
	}

	if wantLength {
		return shared.Ok(strconv.Itoa(jsonLength(result)))
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return shared.Fail(1, "jq: "+err.Error())
	}
	return shared.Ok(string(encoded))
}

func jsonLength(v interface{}) int {
	switch x := v.(type) {
	case []interface{}:
		return len(x)
	case map[string]interface{}:
		return len(x)
	case string:
		return len(x)
	case nil:
		return 0
	default:
		return 1
	}
}

func yq(argv []string, stdin string) shared.Output {
	_, positional := shared.ParseFlags(argv)
	filter := "."
	if len(positional) > 0 {
		filter = strings.TrimSpace(positional[0])
	}

	var v interface{}
	if err := yaml.Unmarshal([]byte(stdin), &v); err != nil {
		return shared.Fail(1, "yq: invalid YAML input: "+err.Error())
	}

	result := v
	if filter != "." && filter != "" {
		for _, seg := range strings.Split(strings.TrimPrefix(filter, "."), ".") {
			if seg == "" {
				continue
			}
			m, ok := result.(map[string]interface{})
			if !ok {
				return shared.Fail(1, "yq: "+seg+" is not a mapping")
			}
			result = m[seg]
		}
	}

	encoded, err := yaml.Marshal(result)
	if err != nil {
		return shared.Fail(1, "yq: "+err.Error())
	}
	return shared.Ok(strings.TrimSuffix(string(encoded), "\n"))
}

func base64Cmd(argv []string, stdin string) shared.Output {
	flags, _ := shared.ParseFlags(argv)
	if shared.HasFlag(flags, "-d", "--decode") {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(stdin))
		if err != nil {
			return shared.Fail(1, "base64: invalid input")
		}
		return shared.OkRaw(string(decoded))
	}
	return shared.Ok(base64.StdEncoding.EncodeToString([]byte(stdin)))
}

var envVarRE = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

func envsubst(stdin string, env map[string]string) shared.Output {
	out := envVarRE.ReplaceAllStringFunc(stdin, func(m string) string {
		sub := envVarRE.FindStringSubmatch(m)
		name := sub[1]
		if name == "" {
			name = sub[2]
		}
		return env[name]
	})
	return shared.OkRaw(out)
}
