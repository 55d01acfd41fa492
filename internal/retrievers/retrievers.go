package retrievers

import (
	"time"

	"github.com/vantoi-labs/hoadon-cli/internal/adapters/driven/browser"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
)

// All returns every known retriever variant. The set is closed: a tax
// provider without an entry here is reported as a skip by the
// orchestrator, never discovered dynamically.
func All(mgr *browser.Manager, manualLimit time.Duration) []driven.DocumentRetriever {
	return []driven.DocumentRetriever{
		NewMISA(),
		NewHilo(),
		NewFPT(mgr),
		NewViettel(mgr, manualLimit),
		NewSoftDreams(mgr, manualLimit),
		NewThaiSon(mgr, manualLimit),
		NewBuuChinhVT(mgr, manualLimit),
		NewVina(mgr, manualLimit),
	}
}
