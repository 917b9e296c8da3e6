package certificate

import "strings"

// Class is the display bucket a category falls into.
type Class string

const (
	ClassAIML     Class = "ai-ml"
	ClassSecurity Class = "security"
	ClassDatabase Class = "database"
	ClassDefault  Class = "default"
)

var classStyles = map[Class]string{
	ClassAIML:     "bg-violet-500/20 text-violet-300 border-violet-500/30",
	ClassSecurity: "bg-red-500/20 text-red-300 border-red-500/30",
	ClassDatabase: "bg-green-500/20 text-green-300 border-green-500/30",
	ClassDefault:  "bg-blue-500/20 text-blue-300 border-blue-500/30",
}

// ClassOf maps a free-text category onto its display class. Matching is
// case-insensitive and every unrecognised category lands in ClassDefault.
func ClassOf(category string) Class {
	switch strings.ToLower(category) {
	case "ai/ml", "ai", "ml":
		return ClassAIML
	case "security":
		return ClassSecurity
	case "database":
		return ClassDatabase
	default:
		return ClassDefault
	}
}

// Style returns the badge utility classes for c.
func (c Class) Style() string {
	if s, ok := classStyles[c]; ok {
		return s
	}
	return classStyles[ClassDefault]
}
