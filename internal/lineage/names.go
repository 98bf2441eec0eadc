// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package lineage

// CuratedNames are the display names handed out before falling back to
// numbered names.
var CuratedNames = []string{
	"Alice", "Bob", "Charlie", "Diana", "Ethan", "Fiona",
	"George", "Hannah", "Ivan", "Julia", "Kevin", "Laura",
	"Marco", "Nina", "Oscar", "Paula", "Quentin", "Rita",
	"Sam", "Tina", "Victor", "Wendy", "Yuki", "Zara",
	"Giulia", "Luca", "Sofia", "Francesco", "Chiara", "Matteo",
	"Alessia", "Davide", "Martina", "Nicola", "Serena", "Giorgio",
	"Elena", "Alberto", "Claudia",
	"Taro", "Hanako", "Yuto", "Sakura", "Haruto", "Hina",
	"Ren", "Aoi", "Souta", "Yui", "Kaito", "Mio",
}
