package builtin

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Func is a built-in function. A returned error describes bad arguments;
// the caller decides how to report it.
type Func func(args []string) (any, error)

type Registry struct {
	funcs map[string]Func
}

func NewRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]Func),
	}
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.funcs["now"] = funcNow
	r.funcs["date"] = funcDate
	r.funcs["timestamp"] = funcTimestamp
	r.funcs["timestampMs"] = funcTimestampMs
	r.funcs["uuid"] = funcUUID
	r.funcs["random"] = funcRandom
	r.funcs["randomString"] = funcRandomString
	r.funcs["randomAlphanumeric"] = funcRandomString
	r.funcs["randomEmail"] = funcRandomEmail
	r.funcs["base64"] = oneArg(func(s string) (any, error) {
		return base64.StdEncoding.EncodeToString([]byte(s)), nil
	})
	r.funcs["base64Decode"] = oneArg(func(s string) (any, error) {
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return "", fmt.Errorf("base64Decode: %w", err)
		}
		return string(decoded), nil
	})
	r.funcs["md5"] = oneArg(func(s string) (any, error) {
		hash := md5.Sum([]byte(s))
		return hex.EncodeToString(hash[:]), nil
	})
	r.funcs["sha256"] = oneArg(func(s string) (any, error) {
		hash := sha256.Sum256([]byte(s))
		return hex.EncodeToString(hash[:]), nil
	})
	r.funcs["urlEncode"] = oneArg(func(s string) (any, error) {
		return url.QueryEscape(s), nil
	})
	r.funcs["urlDecode"] = oneArg(func(s string) (any, error) {
		decoded, err := url.QueryUnescape(s)
		if err != nil {
			return s, fmt.Errorf("urlDecode: %w", err)
		}
		return decoded, nil
	})
	r.funcs["upper"] = oneArg(func(s string) (any, error) { return strings.ToUpper(s), nil })
	r.funcs["lower"] = oneArg(func(s string) (any, error) { return strings.ToLower(s), nil })
	r.funcs["env"] = oneArg(func(s string) (any, error) { return os.Getenv(s), nil })
}

// Register adds or replaces a function.
func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Names lists the registered functions, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var funcCallPattern = regexp.MustCompile(`^(\w+)\((.*)\)$`)

// Call evaluates an expression such as randomString(8). ok is false when
// expr is not a call to a registered function.
func (r *Registry) Call(expr string) (result any, ok bool, err error) {
	matches := funcCallPattern.FindStringSubmatch(strings.TrimSpace(expr))
	if matches == nil {
		return nil, false, nil
	}

	fn, found := r.funcs[matches[1]]
	if !found {
		return nil, false, nil
	}

	var args []string
	if matches[2] != "" {
		args = parseArgs(matches[2])
	}

	result, err = fn(args)
	return result, true, err
}

func parseArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !inQuote && (ch == '"' || ch == '\'') {
			inQuote = true
			quoteChar = ch
		} else if inQuote && ch == quoteChar {
			inQuote = false
			quoteChar = 0
		} else if !inQuote && ch == ',' {
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		} else {
			current.WriteByte(ch)
		}
	}

	if current.Len() > 0 {
		args = append(args, strings.TrimSpace(current.String()))
	}

	return args
}

func oneArg(fn func(s string) (any, error)) Func {
	return func(args []string) (any, error) {
		if len(args) < 1 {
			return "", fmt.Errorf("expected one argument")
		}
		return fn(args[0])
	}
}

func intArg(args []string, i int, name string, def int) (int, error) {
	if len(args) <= i {
		return def, nil
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return def, fmt.Errorf("%s argument %q is not a valid integer", name, args[i])
	}
	return v, nil
}

func funcNow(_ []string) (any, error) {
	return time.Now().UTC().Format(time.RFC3339), nil
}

func funcDate(args []string) (any, error) {
	layout := "2006-01-02"
	if len(args) >= 1 {
		layout = args[0]
	}
	return time.Now().UTC().Format(layout), nil
}

func funcTimestamp(_ []string) (any, error) {
	return time.Now().Unix(), nil
}

func funcTimestampMs(_ []string) (any, error) {
	return time.Now().UnixMilli(), nil
}

func funcUUID(_ []string) (any, error) {
	return uuid.NewString(), nil
}

func funcRandom(args []string) (any, error) {
	lo, err := intArg(args, 0, "min", 0)
	if err != nil {
		return nil, fmt.Errorf("random: %w", err)
	}
	hi, err := intArg(args, 1, "max", 100)
	if err != nil {
		return nil, fmt.Errorf("random: %w", err)
	}
	if hi < lo {
		return nil, fmt.Errorf("random: max %d is below min %d", hi, lo)
	}
	return rand.Intn(hi-lo+1) + lo, nil
}

func funcRandomString(args []string) (any, error) {
	n, err := intArg(args, 0, "length", 16)
	if err != nil {
		return nil, fmt.Errorf("randomString: %w", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("randomString: negative length %d", n)
	}
	return randomString(n, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"), nil
}

func funcRandomEmail(_ []string) (any, error) {
	user := randomString(8, "abcdefghijklmnopqrstuvwxyz")
	domain := randomString(6, "abcdefghijklmnopqrstuvwxyz")
	return fmt.Sprintf("%s@%s.com", user, domain), nil
}

func randomString(length int, charset string) string {
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
