// Package parser expands player shorthand into root command lines: bare
// directions, one-letter verbs, synonyms and "talk to the ..." phrasing.
// It knows nothing about game state; lines it does not recognise pass
// through untouched.
package parser

import (
	"strings"
)

var directionExpansions = map[string]string{
	"n": "north",
	"s": "south",
	"e": "east",
	"w": "west",
}

var directionNames = map[string]bool{
	"north": true, "south": true, "east": true, "west": true,
}

var verbAliases = map[string]string{
	"l":       "look",
	"x":       "look",
	"examine": "look",
	"inspect": "look",
	"check":   "look",
	"scan":    "look",

	"walk": "go",
	"run":  "go",
	"move": "go",
	"head": "go",

	"get":  "take",
	"lift": "take",

	"speak":   "talk",
	"chat":    "talk",
	"contact": "talk",

	"hit":   "brawl",
	"punch": "brawl",
	"fight": "brawl",

	"grapple": "grab",
	"tackle":  "grab",

	"leave":   "bye",
	"goodbye": "bye",

	"i":   "inventory",
	"inv": "inventory",

	"skill": "use_skill",
	"roll":  "use_skill",

	"me":     "whoami",
	"status": "whoami",

	"meditate": "reflect",

	"exit": "quit",
}

// phrases collapse two-word verbs onto their command.
var phrases = map[[2]string]string{
	{"look", "at"}:      "look",
	{"talk", "to"}:      "talk",
	{"talk", "with"}:    "talk",
	{"speak", "to"}:     "talk",
	{"speak", "with"}:   "talk",
	{"pick", "up"}:      "take",
	{"answer", "phone"}: "answer",
	{"use", "skill"}:    "use_skill",
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Expand rewrites one input line. The verb is lowercased; arguments keep
// their case, minus any leading articles.
func Expand(line string) string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return line
	}
	verb := strings.ToLower(words[0])

	if len(words) == 1 {
		if dir, ok := directionExpansions[verb]; ok {
			return "go " + dir
		}
		if directionNames[verb] {
			return "go " + verb
		}
	}

	rest := words[1:]
	if len(rest) > 0 {
		if cmd, ok := phrases[[2]string{verb, strings.ToLower(rest[0])}]; ok {
			verb, rest = cmd, rest[1:]
		}
	}
	if alias, ok := verbAliases[verb]; ok {
		verb = alias
	}
	if verb == "go" && len(rest) == 1 {
		if dir, ok := directionExpansions[strings.ToLower(rest[0])]; ok {
			rest = []string{dir}
		}
	}

	rest = trimArticles(rest)
	if len(rest) == 0 {
		return verb
	}
	return verb + " " + strings.Join(rest, " ")
}

// trimArticles drops articles ahead of the object only; anything after it
// may be speech.
func trimArticles(words []string) []string {
	for len(words) > 0 && articles[strings.ToLower(words[0])] {
		words = words[1:]
	}
	return words
}
