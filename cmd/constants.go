package cmd

// DefaultConfigFilename describes the default verification config filename for a given
// project folder.
const DefaultConfigFilename = "solisp.json"
