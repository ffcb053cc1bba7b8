package logsvc

import (
	"fmt"

	"github.com/trezcool/studymatch/core/user"
)

// entry is a log call split into its parts.
// expected args: error, user.User, map[string]interface{} or key/value pairs, in any order.
type entry struct {
	err    error
	usr    *user.User
	fields map[string]interface{}
	keys   []string // fields order
}

func (e *entry) set(key string, val interface{}) {
	if _, ok := e.fields[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.fields[key] = val
}

func parseArgs(args []interface{}) entry {
	e := entry{fields: make(map[string]interface{})}
	for i := 0; i < len(args); i++ {
		switch arg := args[i].(type) {
		case error:
			if e.err == nil {
				e.err = arg
			} else {
				e.set(fmt.Sprintf("error%d", len(e.keys)), arg.Error())
			}
		case user.User:
			if e.usr == nil { // only keep one User
				usr := arg
				e.usr = &usr
			}
		case map[string]interface{}:
			for k, v := range arg {
				e.set(k, v)
			}
		case string:
			if i+1 < len(args) {
				e.set(arg, args[i+1])
				i++
			} else {
				e.set("extra", arg)
			}
		default:
			e.set(fmt.Sprintf("arg%d", i), arg)
		}
	}
	return e
}

// keysAndValues flattens the entry for zap's sugared logger.
func (e entry) keysAndValues() []interface{} {
	kvs := make([]interface{}, 0, 2*len(e.keys)+4)
	if e.err != nil {
		kvs = append(kvs, "error", fmt.Sprintf("%+v", e.err))
	}
	if e.usr != nil {
		kvs = append(kvs, "actor_id", e.usr.ID)
	}
	for _, k := range e.keys {
		kvs = append(kvs, k, e.fields[k])
	}
	return kvs
}
