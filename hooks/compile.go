package hooks

import (
	"sync"

	"github.com/anisan-cli/playtrack/filesystem"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

var protos sync.Map

// compile returns the prototype of the script, parsing it only once per path.
func compile(path string) (*lua.FunctionProto, error) {
	if cached, ok := protos.Load(path); ok {
		return cached.(*lua.FunctionProto), nil
	}

	file, err := filesystem.API().Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	chunk, err := parse.Parse(file, path)
	if err != nil {
		return nil, err
	}

	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, err
	}

	protos.Store(path, proto)
	return proto, nil
}

// forget drops the cached prototype so an edited script is parsed again.
func forget(path string) {
	protos.Delete(path)
}
