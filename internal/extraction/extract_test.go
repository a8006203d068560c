package extraction

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	m := fixtureMatcher(t)
	text := "Senior engineer: Python, Docker, Active Directory. Fluent English language, French language is a plus."

	res, err := Run(context.Background(), m, text, DefaultThreshold)
	require.NoError(t, err)

	assert.Equal(t, []string{"Docker", "Active Directory", "Python (Programming Language)"}, res.Skills)
	assert.Equal(t, []string{"English language", "French language"}, res.Languages)
	assert.Equal(t, 3, res.SkillsCount)
	assert.Equal(t, 2, res.LanguagesCount)
}

func TestRun_HTMLDescription(t *testing.T) {
	m := fixtureMatcher(t)
	html := `<p><strong>FUNCTIE</strong><br>Kennis van Docker</p><ul><li>Active</li><li>Directory</li></ul><p>C++&nbsp;en Node.js</p>`

	res, err := Run(context.Background(), m, html, DefaultThreshold)
	require.NoError(t, err)

	assert.Equal(t, []string{"Docker", "Active Directory", "C++", "Node.js"}, res.Skills)
	assert.Empty(t, res.Languages)
}

func TestRun_Deterministic(t *testing.T) {
	m := fixtureMatcher(t)
	text := "root cause analysis, docker, python programming and english language"

	first, err := Run(context.Background(), m, text, DefaultThreshold)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Run(context.Background(), m, text, DefaultThreshold)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRun_Invariants(t *testing.T) {
	m := fixtureMatcher(t)
	vocab := []string{
		"python", "docker", "english", "language", "french", "root", "cause",
		"analysis", "active", "directory", "c++", "node.js", "and", "of", "the",
		"programming", "team", "<br>", "experience",
	}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		words := make([]string, 5+rng.Intn(40))
		for j := range words {
			words[j] = vocab[rng.Intn(len(vocab))]
		}
		res, err := Run(context.Background(), m, strings.Join(words, " "), DefaultThreshold)
		require.NoError(t, err)

		assert.Equal(t, len(res.Skills), res.SkillsCount)
		assert.Equal(t, len(res.Languages), res.LanguagesCount)

		seen := make(map[string]bool)
		for _, name := range append(append([]string{}, res.Skills...), res.Languages...) {
			assert.False(t, seen[name], "duplicate %q", name)
			seen[name] = true
		}
		for _, name := range res.Skills {
			assert.False(t, IsLanguage(name))
		}
		for _, name := range res.Languages {
			assert.True(t, IsLanguage(name))
		}
	}
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "plain text", PlainText("plain text"))

	out := PlainText(`<p>Python</p><p>Docker</p><script>var x = "Kubernetes";</script>`)
	assert.Contains(t, out, "Python")
	assert.Contains(t, out, "Docker")
	assert.NotContains(t, out, "PythonDocker")
	assert.NotContains(t, out, "Kubernetes")
}

func TestNewResult_CountsMatchLists(t *testing.T) {
	res := NewResult(nil)
	assert.Equal(t, 0, res.SkillsCount)
	assert.Equal(t, 0, res.LanguagesCount)
	assert.NotNil(t, res.Skills)
	assert.NotNil(t, res.Languages)
}
