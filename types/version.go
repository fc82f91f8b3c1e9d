package types

// Version is the canonical amlctl version.
// The command wire layout is versioned separately by CommandMagic.
const Version = "0.3.0"
