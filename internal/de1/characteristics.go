// Package de1 defines the DE1 GATT vocabulary: the characteristic table,
// machine states, MMR addresses and the binary payloads exchanged on the
// A000 service.
package de1

import "strings"

// ServiceUUID is the DE1 primary service.
const ServiceUUID = "0000A000-0000-1000-8000-00805F9B34FB"

// CCCDUUID is the Client Characteristic Configuration descriptor.
const CCCDUUID = "00002902-0000-1000-8000-00805f9b34fb"

// Char identifies one of the ten DE1 characteristics by its four-hex-digit
// short ID. Unknown short IDs map to CharUnknown.
type Char uint8

const (
	CharUnknown Char = iota
	CharVersion
	CharRequestedState
	CharReadFromMMR
	CharWriteToMMR
	CharShotSettings
	CharShotSample
	CharStateInfo
	CharHeaderWrite
	CharFrameWrite
	CharWaterLevels
)

// Property bits for a characteristic.
type Property uint8

const (
	PropRead Property = 1 << iota
	PropWrite
	PropNotify
)

// CharInfo is one row of the characteristic table.
type CharInfo struct {
	Char         Char
	Name         string
	ShortID      string
	Props        Property
	InitialValue []byte
}

// Table lists the ten DE1 characteristics in declaration order. Initial
// values match the real daemon, including the 20-byte READ_FROM_MMR default
// kept for bug-compatibility even though responses are always 8 bytes.
var Table = []CharInfo{
	{CharVersion, "VERSION", "A001", PropRead, []byte{0x02, 0x01, 0x00, 0x00}},
	{CharRequestedState, "REQUESTED_STATE", "A002", PropWrite, make([]byte, 1)},
	{CharReadFromMMR, "READ_FROM_MMR", "A005", PropRead | PropWrite | PropNotify, make([]byte, 20)},
	{CharWriteToMMR, "WRITE_TO_MMR", "A006", PropWrite, make([]byte, 20)},
	{CharShotSettings, "SHOT_SETTINGS", "A00B", PropRead | PropWrite, make([]byte, 9)},
	{CharShotSample, "SHOT_SAMPLE", "A00D", PropNotify, make([]byte, 19)},
	{CharStateInfo, "STATE_INFO", "A00E", PropRead | PropNotify, []byte{0x02, 0x00}},
	{CharHeaderWrite, "HEADER_WRITE", "A00F", PropWrite, make([]byte, 5)},
	{CharFrameWrite, "FRAME_WRITE", "A010", PropWrite, make([]byte, 8)},
	{CharWaterLevels, "WATER_LEVELS", "A011", PropRead | PropNotify, []byte{0x4B, 0x00}},
}

var byShortID = func() map[string]Char {
	m := make(map[string]Char, len(Table))
	for _, ci := range Table {
		m[ci.ShortID] = ci.Char
	}
	return m
}()

// CharFromShortID resolves a four-hex-digit short ID, case-insensitively.
func CharFromShortID(shortID string) Char {
	return byShortID[strings.ToUpper(shortID)]
}

// Info returns the table row for c. The zero Char has no row.
func (c Char) Info() (CharInfo, bool) {
	for _, ci := range Table {
		if ci.Char == c {
			return ci, true
		}
	}
	return CharInfo{}, false
}

// ShortID returns the four-hex-digit short ID, or "" for CharUnknown.
func (c Char) ShortID() string {
	if ci, ok := c.Info(); ok {
		return ci.ShortID
	}
	return ""
}

func (c Char) String() string {
	if ci, ok := c.Info(); ok {
		return ci.Name
	}
	return "UNKNOWN"
}

// ExpandShortID expands a four-hex-digit short ID to the full 128-bit UUID
// under the Bluetooth base.
func ExpandShortID(shortID string) string {
	return "0000" + strings.ToUpper(shortID) + "-0000-1000-8000-00805F9B34FB"
}

// ShortIDFromUUID extracts the four-hex-digit short ID from a full UUID.
func ShortIDFromUUID(uuid string) string {
	if len(uuid) < 8 {
		return ""
	}
	return strings.ToUpper(uuid[4:8])
}
