package domain

import "github.com/sealbound/notary/internal/values"

// requiredComponentParameters are the four parameters notarize requires on
// any component handed to it (§4.4): tag and version identify the
// component across revisions, permissions constrains what the signature
// authorizes, previous chains it to whatever it supersedes.
var requiredComponentParameters = []string{
	ParamTag,
	ParamVersion,
	ParamPermissions,
	ParamPrevious,
}

// ValidateComponentParameters reports which of the four parameters
// notarize requires are missing from component. A nil slice means the
// component is well-formed.
func ValidateComponentParameters(component values.Parameterized) []string {
	var missing []string
	for _, name := range requiredComponentParameters {
		if _, ok := component.Parameter(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
