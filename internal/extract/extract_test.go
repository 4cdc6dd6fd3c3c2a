package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctions_Empty(t *testing.T) {
	assert.Empty(t, Functions(""))
	assert.Empty(t, Functions("Write-Host 'no functions here'\n$x = 1\n"))
}

func TestFunctions_SingleTrivial(t *testing.T) {
	doc := "function Foo { return 1 }\n"

	spans := Functions(doc)
	require.Len(t, spans, 1)
	assert.Equal(t, "Foo", spans[0].Name)
	assert.Equal(t, "function Foo { return 1 }", spans[0].Text)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, doc[spans[0].Start:spans[0].End], spans[0].Text)
}

func TestFunctions_NestedBracesCapturedWhole(t *testing.T) {
	doc := `function Get-Thing {
    if ($x -gt 1) {
        foreach ($i in 1..3) { Write-Host $i }
    }
    return $x
}
`

	spans := Functions(doc)
	require.Len(t, spans, 1)
	assert.Equal(t, "Get-Thing", spans[0].Name)
	// The span must run through the function's own closing brace, not the
	// first nested one.
	assert.True(t, len(spans[0].Text) == len(doc)-1, "span should cover the whole definition")
	assert.Equal(t, byte('}'), spans[0].Text[len(spans[0].Text)-1])
	assert.Contains(t, spans[0].Text, "return $x")
}

func TestFunctions_BracesInStringsAndComments(t *testing.T) {
	doc := "function Foo {\n" +
		"    $a = '}'\n" +
		"    $b = \"closing } brace\"\n" +
		"    # stray } in a comment\n" +
		"    <# block } comment #>\n" +
		"    return $a\n" +
		"}\n"

	spans := Functions(doc)
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Text, "return $a")
	assert.Equal(t, len(doc)-1, spans[0].End)
}

func TestFunctions_EscapedQuotes(t *testing.T) {
	doc := "function Foo {\n" +
		"    $a = 'it''s a } test'\n" +
		"    $b = \"she said `\"}`\"\"\n" +
		"    return 1\n" +
		"}\n"

	spans := Functions(doc)
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Text, "return 1")
}

func TestFunctions_MultipleInOrder(t *testing.T) {
	doc := "function First { return 1 }\n\n" +
		"function Second-Helper { return 2 }\n\n" +
		"function Third { return 3 }\n"

	spans := Functions(doc)
	require.Len(t, spans, 3)
	assert.Equal(t, "First", spans[0].Name)
	assert.Equal(t, "Second-Helper", spans[1].Name)
	assert.Equal(t, "Third", spans[2].Name)
	assert.Less(t, spans[0].End, spans[1].Start)
	assert.Less(t, spans[1].End, spans[2].Start)
}

func TestFunctions_NestedFunctionNotSeparate(t *testing.T) {
	doc := `function Outer {
    function Inner { return 2 }
    return 1
}
`

	spans := Functions(doc)
	require.Len(t, spans, 1)
	assert.Equal(t, "Outer", spans[0].Name)
	assert.Contains(t, spans[0].Text, "function Inner")
}

func TestFunctions_UnterminatedSkipped(t *testing.T) {
	doc := "function Broken {\n    return 1\n"

	assert.Empty(t, Functions(doc))
}

func TestFunctions_IdenticalBodiesYieldDistinctSpans(t *testing.T) {
	doc := "function Foo { return 1 }\nfunction Foo { return 1 }\n"

	spans := Functions(doc)
	require.Len(t, spans, 2)
	assert.Equal(t, spans[0].Text, spans[1].Text)
	assert.NotEqual(t, spans[0].Start, spans[1].Start)
}
