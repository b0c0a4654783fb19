// golangcilintopaque package provides a plugin for golangci-lint to integrate
// the opaque analyzer. To build a custom golangci-lint binary with this
// plugin, use the following command at this package's directory:
//
//	golangci-lint custom
//
// The resulting binary reports misconfigured opaque typedefs along with the
// other linters.
package golangcilintopaque

import (
	"github.com/golangci/plugin-module-register/register"
	"golang.org/x/tools/go/analysis"

	"github.com/sublee/opaque/pkg/opaqueanalysis"
)

func init() {
	register.Plugin("opaque", New)
}

func New(settings any) (register.LinterPlugin, error) {
	return OpaqueLinter{}, nil
}

type OpaqueLinter struct{}

func (OpaqueLinter) BuildAnalyzers() ([]*analysis.Analyzer, error) {
	return []*analysis.Analyzer{opaqueanalysis.Analyzer}, nil
}

// GetLoadMode requests type information, which validator checks need.
func (OpaqueLinter) GetLoadMode() string {
	return register.LoadModeTypesInfo
}
