// Package ids generates room codes and player identifiers.
//
// Room codes are short, human-shareable and NOT guaranteed unique; callers
// must check against the room store and regenerate on collision. Player ids
// are unique with overwhelming probability for the lifetime of the process.
package ids
