package weaviate

import "fmt"

// VersionWarnings logs advisories about path styles the server version handles differently.
type VersionWarnings struct {
	version string
	logger  Logger
}

// NewVersionWarnings creates warnings for version. A nil logger discards them.
func NewVersionWarnings(version string, logger Logger) *VersionWarnings {
	if logger == nil {
		logger = noopLogger{}
	}

	return &VersionWarnings{version: version, logger: logger}
}

// DeprecatedNonClassNameNamespacedEndpointsForObjects warns that object paths without a class name are deprecated.
func (w *VersionWarnings) DeprecatedNonClassNameNamespacedEndpointsForObjects() {
	w.warn("Usage of objects paths without className is deprecated in Weaviate %s. Please provide className parameter")
}

// DeprecatedNonClassNameNamespacedEndpointsForReferences warns that reference paths without a class name are deprecated.
func (w *VersionWarnings) DeprecatedNonClassNameNamespacedEndpointsForReferences() {
	w.warn("Usage of references paths without className is deprecated in Weaviate %s. Please provide className parameter")
}

// DeprecatedNonClassNameNamespacedEndpointsForBeacons warns that beacons without a class name are deprecated.
func (w *VersionWarnings) DeprecatedNonClassNameNamespacedEndpointsForBeacons() {
	w.warn("Usage of beacons paths without className is deprecated in Weaviate %s. Please provide className parameter")
}

// NotSupportedClassNamespacedEndpointsForObjects warns that the server ignores the class name in object paths.
func (w *VersionWarnings) NotSupportedClassNamespacedEndpointsForObjects() {
	w.warn("Usage of objects paths with className is not supported in Weaviate %s. className parameter is ignored")
}

// NotSupportedClassNamespacedEndpointsForReferences warns that the server ignores the class name in reference paths.
func (w *VersionWarnings) NotSupportedClassNamespacedEndpointsForReferences() {
	w.warn("Usage of references paths with className is not supported in Weaviate %s. className parameter is ignored")
}

// NotSupportedClassNamespacedEndpointsForBeacons warns that the server ignores the class name in beacons.
func (w *VersionWarnings) NotSupportedClassNamespacedEndpointsForBeacons() {
	w.warn("Usage of beacons paths with className is not supported in Weaviate %s. className parameter is ignored")
}

// NotSupportedClassParameterInEndpointsForObjects warns that the server ignores the class query parameter on object paths.
func (w *VersionWarnings) NotSupportedClassParameterInEndpointsForObjects() {
	w.warn("Usage of objects paths with class query parameter is not supported in Weaviate %s. class query parameter is ignored")
}

func (w *VersionWarnings) warn(format string) {
	w.logger.Warn(fmt.Sprintf(format, w.version), map[string]interface{}{"version": w.version})
}
