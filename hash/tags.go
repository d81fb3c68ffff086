package hash

// ---------------------------------------------------------------------------
// Frozen tag values for the content-hash encoding.
//
// IMPORTANT: These tags are FROZEN. Once assigned, a tag must never change
// meaning. Adding new tags is fine; changing existing ones breaks every
// previously computed content hash.
// ---------------------------------------------------------------------------

// Version is the first element of every encoding. Bumping it invalidates all
// existing content hashes.
const Version uint8 = 1

// Node kind tags.
const (
	TagReservedZero uint8 = 0x00

	// Leaves
	TagNumber     uint8 = 0x01
	TagIdentifier uint8 = 0x02

	// Expressions
	TagFunctionCall       uint8 = 0x10
	TagFunctionDefinition uint8 = 0x11
	TagBlock              uint8 = 0x12

	// Structure
	TagAssignment uint8 = 0x20
	TagProgram    uint8 = 0x21
)

// allTags lists every assigned tag.
var allTags = []uint8{
	TagNumber,
	TagIdentifier,
	TagFunctionCall,
	TagFunctionDefinition,
	TagBlock,
	TagAssignment,
	TagProgram,
}
