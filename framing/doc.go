// Package framing reassembles newline delimited messages from a byte stream
// that arrives in arbitrarily sized chunks.
//
// Each Reassembler owns its pending buffer, so any number of independent
// streams can be framed side by side.
package framing
