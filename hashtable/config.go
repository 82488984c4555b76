package hashtable

// Config mirrors the subset of the hash-table config header (§6) that the
// mapper and probe logic consume. Parsing the full fixed-layout header
// (sequence descriptors, names, version strings, command line, reference
// filename) is the reference directory loader's job (refdir package); this
// struct is the pared-down contract the core algorithm depends on.
type Config struct {
	HashtableBytes  uint64
	PriSeedBases    int
	MaxSeedBases    int
	MaxExtIncrement int
	RefSeedInterval int
	TableAddrBits   int
	TableSize64ths  int
	MaxSeedFreq     int
	PriMaxSeedFreq  int
	MaxSeedFreqLen  int
	PriCrcBits      int
	SecCrcBits      int
	PriCrcPoly      [8]byte
	SecCrcPoly      [8]byte
	RefSeqLen       uint64
	NumRefSeqs      int
	DigestType      int
	ExtTabRecs      uint64
	MinFreqToExtend int
}

// SeqDescriptor is one of the N 24-byte sequence descriptors following the
// hash-table config header (§6).
type SeqDescriptor struct {
	Name       string
	Length     uint64
	StartPad   uint64
	SeqID      uint32
}
