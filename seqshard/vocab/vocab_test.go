package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/seqshard/seqshard/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shiftedVocab reports a different EOS index than Vocab.
type shiftedVocab struct{ *Vocab }

func (shiftedVocab) EOSIndex() int { return 7 }

func TestVocab(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"SpecialsFirst", testVocabSpecialsFirst},
		{"LookupAndUnknown", testVocabLookup},
		{"Duplicates", testVocabDuplicates},
		{"LoadFile", testVocabLoadFile},
		{"Prefix", testVocabPrefix},
		{"WordPieceUnknown", testVocabWordPieceUnknown},
		{"Compatibility", testVocabCompatibility},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testVocabSpecialsFirst(t *testing.T) {
	v := New(nil)
	assert.Equal(t, 4, v.Size())
	assert.Equal(t, IdxPad, v.Index(StrPad))
	assert.Equal(t, IdxUnk, v.Index(StrUnk))
	assert.Equal(t, IdxBOS, v.Index(v.BOSToken()))
	assert.Equal(t, IdxEOS, v.Index(v.EOSToken()))
	assert.Equal(t, StrBOS, v.Token(v.BOSIndex()))
}

func testVocabLookup(t *testing.T) {
	v := New([]string{"the", "cat", "sat"})
	assert.Equal(t, 7, v.Size())
	assert.Equal(t, 4, v.Index("the"))
	assert.Equal(t, 6, v.Index("sat"))
	assert.Equal(t, "cat", v.Token(5))

	assert.Equal(t, v.UnkIndex(), v.Index("dog"))
	assert.False(t, v.Contains("dog"))
	assert.True(t, v.Contains("cat"))
	assert.Equal(t, StrUnk, v.Token(99))
	assert.Equal(t, StrUnk, v.Token(-1))
}

func testVocabDuplicates(t *testing.T) {
	v := New([]string{"a", "b", "a", StrEOS, "", "c"})
	assert.Equal(t, 7, v.Size())
	assert.Equal(t, 4, v.Index("a"))
	assert.Equal(t, 6, v.Index("c"))
	assert.Equal(t, IdxEOS, v.Index(StrEOS))
}

func testVocabLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.txt")
	content := "hello\t120\nworld\t80\n\n  spaced  \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, v.Size())
	assert.Equal(t, 4, v.Index("hello"))
	assert.Equal(t, 5, v.Index("world"))
	assert.Equal(t, 6, v.Index("spaced"))

	_, err = Load("")
	assert.ErrorIs(t, err, common.ErrPathEmpty)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func testVocabPrefix(t *testing.T) {
	v := New([]string{"play", "played", "player", "pause"})
	assert.Equal(t, []string{"play", "played", "player"}, v.WithPrefix("play"))
	assert.Empty(t, v.WithPrefix("zzz"))
}

func testVocabWordPieceUnknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.txt")
	require.NoError(t, os.WriteFile(path, []byte("[PAD]\n[UNK]\n[CLS]\n[SEP]\nhello\n"), 0o644))

	v, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, IdxUnk, v.Index(StrWordPieceUnk))
	assert.True(t, v.Contains(StrWordPieceUnk))
	assert.Equal(t, 4, v.Index("[PAD]"))
	assert.Equal(t, 7, v.Index("hello"))
	assert.Equal(t, 8, v.Size())
	assert.Equal(t, StrUnk, v.Token(IdxUnk))
}

func testVocabCompatibility(t *testing.T) {
	src := New([]string{"a"})
	tgt := New([]string{"b", "c"})
	assert.NoError(t, CheckCompatible(src, tgt))

	err := CheckCompatible(src, shiftedVocab{tgt})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSpecialIndexMismatch)
}
