// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"encoding/json"

	"github.com/weex-cli/weex/internal/config"
	"github.com/weex-cli/weex/internal/state"
)

// CoreData is the context the core is constructed with. Field names match what
// the core reads from its constructor argument.
type CoreData struct {
	CoreName             string                     `json:"coreName"`
	CoreRoot             string                     `json:"coreRoot"`
	CorePath             string                     `json:"corePath"`
	ModuleRoot           string                     `json:"moduleRoot"`
	Registry             string                     `json:"registry"`
	ModuleConfigFileName string                     `json:"moduleConfigFileName"`
	GlobalConfigFileName string                     `json:"globalConfigFileName"`
	Home                 string                     `json:"home"`
	Trash                string                     `json:"trash"`
	Modules              map[string]json.RawMessage `json:"modules"`
	Args                 []string                   `json:"args"`
}

// NewCoreData assembles the core context from the resolved configuration and
// the module registry.
func NewCoreData(cfg *config.Bootstrap, modules state.Modules) CoreData {
	if modules == nil {
		modules = state.Modules{}
	}
	return CoreData{
		CoreName:             cfg.CoreName(),
		CoreRoot:             cfg.CoreRoot(),
		CorePath:             cfg.CorePath(),
		ModuleRoot:           cfg.ModuleRoot(),
		Registry:             cfg.Registry(),
		ModuleConfigFileName: cfg.ModuleConfigFileName(),
		GlobalConfigFileName: cfg.GlobalConfigFileName(),
		Home:                 cfg.Home(),
		Trash:                cfg.Trash(),
		Modules:              modules,
		Args:                 cfg.Args(),
	}
}
