package env

import (
	"os"
	"path/filepath"
	"strings"
)

type Environment struct {
	Name      string
	Variables map[string]any
}

// dotEnvFiles are read in order; later files override earlier ones.
func dotEnvFiles(envName string) []string {
	files := []string{".env"}
	if envName != "" {
		files = append(files, ".env."+envName)
	}
	return append(files, ".env.local")
}

// LoadEnvironment builds the variables for envName from the config file's
// environments section and the .env files found in dir.
func LoadEnvironment(dir, envName string, configEnvs map[string]map[string]any) (*Environment, error) {
	env := &Environment{
		Name:      envName,
		Variables: make(map[string]any),
	}

	if vars, ok := configEnvs[envName]; ok {
		for k, v := range vars {
			env.Variables[k] = v
		}
	}

	for _, name := range dotEnvFiles(envName) {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		vars, err := LoadDotEnv(path)
		if err != nil {
			return nil, err
		}
		for k, v := range vars {
			env.Variables[k] = v
		}
	}

	return env, nil
}

func MergeVariables(sources ...map[string]any) map[string]any {
	result := make(map[string]any)
	for _, src := range sources {
		for k, v := range src {
			result[k] = v
		}
	}
	return result
}

// LoadSystemEnv returns OS environment variables starting with prefix,
// with the prefix removed. An empty prefix returns everything.
func LoadSystemEnv(prefix string) map[string]any {
	result := make(map[string]any)
	for _, e := range os.Environ() {
		key, value, ok := strings.Cut(e, "=")
		if !ok {
			continue
		}
		if prefix == "" {
			result[key] = value
		} else if len(key) > len(prefix) && strings.HasPrefix(key, prefix) {
			result[key[len(prefix):]] = value
		}
	}
	return result
}
