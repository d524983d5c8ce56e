package validate

import "os"

// readFile is a package-level var so tests can stub file access without
// touching disk, mirroring the teacher's hook-function pattern in
// internal/memory/store.go.
var readFile = os.ReadFile
