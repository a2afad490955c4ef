package manifest

import "encoding/json"

// The serialized manifest must match the dynamic path's output exactly.
// The dynamic path serializes its models with default settings, which emit
// null for unset optional fields rather than omitting them, so none of the
// JSON tags below carry omitempty. Field order is fixed by struct order,
// which also makes the output byte-stable across runs.

type pluginJSON struct {
	Name          string     `json:"name"`
	PluginKind    PluginKind `json:"plugin_kind"`
	Obj           *Reference `json:"obj"`
	Config        *Reference `json:"config"`
	CallMethod    *string    `json:"call_method"`
	IOType        *string    `json:"io_type"`
	RequiresStore *bool      `json:"requires_store"`
}

type upgraderJSON struct {
	pluginJSON
	VersionStrategy *string    `json:"version_strategy"`
	VersionReader   *Reference `json:"version_reader"`
}

// MarshalJSON serializes the plugin in the canonical manifest shape.
// Upgrader-kind plugins carry their kind-specific fields; other kinds do
// not, matching the discriminated models of the dynamic path.
func (p Plugin) MarshalJSON() ([]byte, error) {
	base := pluginJSON{
		Name:          p.Name,
		PluginKind:    p.Kind,
		Obj:           p.Obj,
		Config:        p.Config,
		CallMethod:    p.CallMethod,
		IOType:        p.IOType,
		RequiresStore: p.RequiresStore,
	}
	if p.Kind == KindUpgrader {
		return json.Marshal(upgraderJSON{
			pluginJSON:      base,
			VersionStrategy: p.VersionStrategy,
			VersionReader:   p.VersionReader,
		})
	}
	return json.Marshal(base)
}

type packageJSON struct {
	Name     string         `json:"name"`
	Plugins  []Plugin       `json:"plugins"`
	Metadata map[string]any `json:"metadata"`
}

// MarshalJSON serializes the package manifest. The plugin sequence keeps
// source order; metadata is an empty object unless dependency names were
// recorded.
func (p Package) MarshalJSON() ([]byte, error) {
	plugins := p.Plugins
	if plugins == nil {
		plugins = []Plugin{}
	}
	metadata := map[string]any{}
	if len(p.Dependencies) > 0 {
		metadata["dependencies"] = p.Dependencies
	}
	return json.Marshal(packageJSON{
		Name:     p.Name,
		Plugins:  plugins,
		Metadata: metadata,
	})
}

// UnmarshalJSON restores a package from its manifest form. Used by stores
// and caches; the Args slices are not part of the wire shape and stay nil.
func (p *Package) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name     string `json:"name"`
		Plugins  []json.RawMessage `json:"plugins"`
		Metadata struct {
			Dependencies []string `json:"dependencies"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Name = raw.Name
	p.Dependencies = raw.Metadata.Dependencies
	p.Plugins = make([]Plugin, 0, len(raw.Plugins))
	for _, rp := range raw.Plugins {
		var pj upgraderJSON
		if err := json.Unmarshal(rp, &pj); err != nil {
			return err
		}
		p.Plugins = append(p.Plugins, Plugin{
			Name:            pj.Name,
			Kind:            pj.PluginKind,
			Obj:             pj.Obj,
			Config:          pj.Config,
			CallMethod:      pj.CallMethod,
			IOType:          pj.IOType,
			RequiresStore:   pj.RequiresStore,
			VersionStrategy: pj.VersionStrategy,
			VersionReader:   pj.VersionReader,
		})
	}
	return nil
}
