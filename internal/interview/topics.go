package interview

import "strings"

// topicVocabulary is the fixed keyword set matched against candidate
// utterances: languages, platform nouns, process terms, and general career
// vocabulary.
var topicVocabulary = []string{
	"javascript", "typescript", "python", "java", "golang", "rust",
	"react", "angular", "vue", "node",
	"database", "sql", "mongodb", "postgres", "redis",
	"api", "rest", "graphql", "microservices",
	"aws", "azure", "cloud", "docker", "kubernetes",
	"frontend", "backend", "fullstack", "mobile",
	"testing", "debugging", "deployment", "devops",
	"agile", "scrum", "sprint",
	"design", "architecture", "scalability", "performance", "security",
	"algorithm", "optimization",
	"team", "leadership", "mentoring", "communication",
	"project", "product", "management", "deadline", "stakeholder",
}

// ExtractTopics scans an utterance for vocabulary keywords and returns the
// subset present, in vocabulary order. Matching is case-insensitive and uses
// bidirectional substring containment between each whitespace token and each
// keyword, so a token matches a keyword if either contains the other. That
// is deliberately loose ("reactive" matches "react") to stay faithful to
// the behavior clients already depend on.
func ExtractTopics(text string) []string {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return nil
	}

	var found []string
	for _, keyword := range topicVocabulary {
		for _, token := range tokens {
			if strings.Contains(token, keyword) || strings.Contains(keyword, token) {
				found = append(found, keyword)
				break
			}
		}
	}
	return found
}
