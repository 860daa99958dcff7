package install

// FilelistRecord is the persistable projection of a PlanEntry: just enough
// for Rollback and Replay to operate on a filelist reloaded from disk after
// a crash. The core doesn't mandate a specific on-disk serialization, only
// that one be possible.
type FilelistRecord struct {
	Rel       string
	Src       string
	Dst       string
	SrcKind   FileKind
	Synthetic bool
}

// FilelistDocument is the full unit a caller persists between prepare and a
// later merge/rollback/replay invocation. TransactionID ties a reloaded
// filelist back to the prepare run that produced it, for log correlation
// when those phases run as separate process invocations.
type FilelistDocument struct {
	TransactionID string
	Records       []FilelistRecord
}

// SerializeFilelist projects a filelist into its persistable form.
func SerializeFilelist(filelist []*PlanEntry) []FilelistRecord {
	records := make([]FilelistRecord, len(filelist))
	for i, e := range filelist {
		records[i] = FilelistRecord{
			Rel:       e.Rel,
			Src:       e.Src,
			Dst:       e.Dst,
			SrcKind:   e.SrcKind,
			Synthetic: e.synthetic,
		}
	}
	return records
}

// DeserializeFilelist reconstructs the minimal PlanEntry set that Rollback
// and Replay need from a previously serialized filelist.
func DeserializeFilelist(records []FilelistRecord) []*PlanEntry {
	filelist := make([]*PlanEntry, len(records))
	for i, r := range records {
		filelist[i] = &PlanEntry{
			Rel:       r.Rel,
			Src:       r.Src,
			Dst:       r.Dst,
			SrcKind:   r.SrcKind,
			synthetic: r.Synthetic,
		}
	}
	return filelist
}

// SerializeFilelistDocument wraps a filelist together with the transaction
// ID of the Installer that prepared it.
func SerializeFilelistDocument(transactionID string, filelist []*PlanEntry) FilelistDocument {
	return FilelistDocument{
		TransactionID: transactionID,
		Records:       SerializeFilelist(filelist),
	}
}

// DeserializeFilelistDocument unwraps a previously persisted document,
// returning the originating transaction ID alongside the reconstructed
// filelist.
func DeserializeFilelistDocument(doc FilelistDocument) (string, []*PlanEntry) {
	return doc.TransactionID, DeserializeFilelist(doc.Records)
}
