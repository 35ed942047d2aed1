package workflow

import (
	"path/filepath"
)

// Output classes. Rendered image pools are kept per class under the cache
// directory so a class can re-render without touching the others; the
// tabletop client pack reuses the database pool, which is rendered at the
// resolution the client wants.
const (
	ClassDatabase = "db"
	ClassTabletop = "octgn"
	ClassPDF      = "pdf"
	ClassMPC      = "mpc"
	ClassDTC      = "dtc"
)

// renderInputClass keys the staging tree holding artwork staged for the
// renderer.
const renderInputClass = "render-input"

// poolDir returns the rendered image pool for one class and pair.
func poolDir(cacheDir, class, setID, language string) string {
	if class == ClassTabletop {
		class = ClassDatabase
	}
	return filepath.Join(cacheDir, class, setID+"."+language)
}

// outputDir returns the delivery directory for one class.
func outputDir(outputRoot, class string) string {
	return filepath.Join(outputRoot, class)
}

// pairName keys deliverables by set name and language.
func pairName(setName, language string) string {
	return setName + "." + language
}

// renderClasses maps enabled output classes to the pool classes that must be
// rendered for them, deduplicated in a fixed order.
func renderClasses(enabled []string) []string {
	want := make(map[string]bool, len(enabled))
	for _, class := range enabled {
		if class == ClassTabletop {
			want[ClassDatabase] = true
			continue
		}
		want[class] = true
	}
	ordered := []string{ClassDatabase, ClassPDF, ClassMPC, ClassDTC}
	out := make([]string, 0, len(want))
	for _, class := range ordered {
		if want[class] {
			out = append(out, class)
		}
	}
	return out
}
