package common

// File permission constants used when test fixtures write working trees
const (
	// FilePermissionNormal is used for ordinary tracked files
	FilePermissionNormal = 0644

	// FilePermissionExecutable is used for files with the executable bit
	FilePermissionExecutable = 0755

	// DirPermissionNormal is used for normal directories
	DirPermissionNormal = 0755
)
