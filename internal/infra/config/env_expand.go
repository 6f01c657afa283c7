package config

import (
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandConfigEnv substitutes ${VAR} references in scalar values of the
// YAML document. Unset variables expand to the empty string and are
// reported so the caller can warn. Expansion walks the parsed tree
// rather than the raw text so ${...} never leaks into keys or anchors.
func expandConfigEnv(data []byte) (string, []string) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		// Let the config parser produce the error on the original text.
		return string(data), nil
	}

	missing := map[string]struct{}{}
	expandNode(&root, missing)

	out, err := yaml.Marshal(&root)
	if err != nil {
		return string(data), nil
	}

	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return string(out), names
}

func expandNode(node *yaml.Node, missing map[string]struct{}) {
	if node == nil {
		return
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!str" {
		node.Value = envRefPattern.ReplaceAllStringFunc(node.Value, func(ref string) string {
			name := envRefPattern.FindStringSubmatch(ref)[1]
			value, ok := os.LookupEnv(name)
			if !ok {
				missing[name] = struct{}{}
				return ""
			}
			return value
		})
	}
	for _, child := range node.Content {
		expandNode(child, missing)
	}
}
