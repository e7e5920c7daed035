package confidence

import (
	"errors"
	"testing"

	"gocorda/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for _, v := range []int{-1, 0, 1, 2, 3} {
		l, err := ParseLevel(v)
		require.NoError(t, err)
		assert.Equal(t, Level(v), l)
	}
	for _, v := range []int{-2, 4, 100} {
		_, err := ParseLevel(v)
		assert.True(t, errors.Is(err, core.ErrInvalidConfidence), "value %d", v)
	}
}

func TestFromIntsRejectsInvalid(t *testing.T) {
	_, err := FromInts(map[string]int{"r1": 1, "EX_A": 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EX_A")

	m, err := FromInts(map[string]int{"r1": 1, "r2": -1})
	require.NoError(t, err)
	assert.Equal(t, Map{"r1": Low, "r2": Exclude}, m)
}

func TestMapCopyIsIndependent(t *testing.T) {
	m := Map{"r1": Low}
	c := m.Copy()
	c["r1"] = High
	c["r2"] = Exclude
	assert.Equal(t, Low, m["r1"])
	assert.NotContains(t, m, "r2")
}

func TestMapValidate(t *testing.T) {
	assert.NoError(t, Map{"a": High, "b": Exclude}.Validate())
	assert.Error(t, Map{"a": Level(7)}.Validate())
}

func TestReactionConfidence(t *testing.T) {
	vals := map[string]Level{"g1": Exclude, "g2": Low, "g3": Medium, "g4": High}
	cases := []struct {
		rule string
		want Level
	}{
		{"g1 and g2 or g3", Medium},
		{"g1 and (g2 or g3)", Exclude},
		{"g1 or g2 or g4 or g5", High},
		{"g3 and g6", Unknown},
		{"", Unknown},
		{"   ", Unknown},
		{"g2.1 AND g3.12", Low},
		{"((g4))", High},
	}

	for _, c := range cases {
		got, err := ReactionConfidence(c.rule, vals)
		require.NoError(t, err, c.rule)
		assert.Equal(t, c.want, got, c.rule)
	}
}

func TestReactionConfidenceRejectsUnsafeRules(t *testing.T) {
	for _, rule := range []string{"print()", "A + B", "A ^ B", "(g1 and g2", "g1 and", "g1 g2"} {
		_, err := ReactionConfidence(rule, map[string]Level{})
		assert.True(t, errors.Is(err, core.ErrInvalidRule), "rule %q: %v", rule, err)
	}
}

func TestNormalizeGeneID(t *testing.T) {
	assert.Equal(t, "10005", NormalizeGeneID("10005.1"))
	assert.Equal(t, "b0001", NormalizeGeneID("b0001"))
}

func TestFromRules(t *testing.T) {
	genes := map[string]Level{"g1": High, "g2": Exclude}
	m, err := FromRules(map[string]string{"r1": "g1 or g2", "r2": "g2", "r3": ""}, genes)
	require.NoError(t, err)
	assert.Equal(t, Map{"r1": High, "r2": Exclude, "r3": Unknown}, m)

	_, err = FromRules(map[string]string{"bad": "g1 + g2"}, genes)
	assert.Error(t, err)
}
