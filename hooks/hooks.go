// Package hooks runs a user Lua script that derives metadata overrides from the loaded source.
//
// The script must define a global function
//
//	function metadata(source) ... end
//
// where source has the fields title, url, viewer_id and custom. It returns a table with any of
// asset_name, viewer_id, stream_type ("live" or "vod"), duration, application_name,
// default_resource, encoded_frame_rate and custom.
package hooks

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/anisan-cli/playtrack/media"
	"github.com/anisan-cli/playtrack/metadata"
	libs "github.com/metafates/mangal-lua-libs"
	"github.com/samber/lo"
	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"
)

// MetadataFn is the global function a script has to define.
const MetadataFn = "metadata"

var ErrNoMetadataFn = errors.New("script does not define " + MetadataFn)

// Hook is a loaded script. It is safe for concurrent use.
type Hook struct {
	path string

	mu    sync.Mutex
	state *lua.LState
}

// Load runs the script once and checks it defines the metadata function.
func Load(path string) (*Hook, error) {
	proto, err := compile(path)
	if err != nil {
		return nil, err
	}

	state := lua.NewState()
	libs.Preload(state)

	state.Push(state.NewFunctionFromProto(proto))
	if err := state.PCall(0, lua.MultRet, nil); err != nil {
		state.Close()
		forget(path)
		return nil, err
	}

	if state.GetGlobal(MetadataFn).Type() != lua.LTFunction {
		state.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrNoMetadataFn)
	}

	return &Hook{path: path, state: state}, nil
}

// Path of the script.
func (h *Hook) Path() string {
	return h.path
}

// Overrides calls the script for the source.
func (h *Hook) Overrides(source media.Source) (metadata.Overrides, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	L := h.state
	if err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal(MetadataFn),
		NRet:    1,
		Protect: true,
	}, sourceTable(L, source)); err != nil {
		return metadata.Overrides{}, err
	}

	ret := L.Get(-1)
	L.Pop(1)

	switch value := ret.(type) {
	case *lua.LNilType:
		return metadata.Overrides{}, nil
	case *lua.LTable:
		var result scriptResult
		if err := gluamapper.Map(value, &result); err != nil {
			return metadata.Overrides{}, fmt.Errorf("%s: %w", h.path, err)
		}

		// gluamapper renames nested keys too, so custom tags are read as is
		if custom, ok := value.RawGetString("custom").(*lua.LTable); ok {
			result.Custom = make(map[string]string)
			custom.ForEach(func(k, v lua.LValue) {
				result.Custom[k.String()] = v.String()
			})
		}

		return result.overrides()
	default:
		return metadata.Overrides{}, fmt.Errorf("%s: %s returned %s, expected table", h.path, MetadataFn, ret.Type())
	}
}

// Close releases the Lua state.
func (h *Hook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.state.Close()
}

func sourceTable(L *lua.LState, source media.Source) *lua.LTable {
	table := L.NewTable()
	table.RawSetString("title", lua.LString(source.Title))
	table.RawSetString("url", lua.LString(source.URL))
	table.RawSetString("viewer_id", lua.LString(source.ViewerID))

	custom := L.NewTable()
	for k, v := range source.CustomData {
		custom.RawSetString(k, lua.LString(v))
	}
	table.RawSetString("custom", custom)

	return table
}

type scriptResult struct {
	AssetName        string
	ViewerID         string
	StreamType       string
	Duration         int
	ApplicationName  string
	DefaultResource  string
	EncodedFrameRate float64
	Custom           map[string]string `gluamapper:"-"`
}

func (r scriptResult) overrides() (metadata.Overrides, error) {
	var o metadata.Overrides

	nonEmpty := func(s string) *string {
		if s == "" {
			return nil
		}
		return lo.ToPtr(s)
	}

	o.AssetName = nonEmpty(r.AssetName)
	o.ViewerID = nonEmpty(r.ViewerID)
	o.ApplicationName = nonEmpty(r.ApplicationName)
	o.DefaultResource = nonEmpty(r.DefaultResource)

	switch strings.ToLower(r.StreamType) {
	case "":
	case "live":
		o.StreamType = lo.ToPtr(metadata.StreamLive)
	case "vod":
		o.StreamType = lo.ToPtr(metadata.StreamVOD)
	default:
		return metadata.Overrides{}, fmt.Errorf("unknown stream type %q", r.StreamType)
	}

	if r.Duration > 0 {
		o.Duration = lo.ToPtr(r.Duration)
	}

	if r.EncodedFrameRate > 0 {
		o.EncodedFrameRate = lo.ToPtr(r.EncodedFrameRate)
	}

	if len(r.Custom) > 0 {
		o.Custom = r.Custom
	}

	return o, nil
}
