package jsonstream

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder 把事件记录成字符串，便于断言
type recorder struct {
	events  []string
	abortOn string
}

func (r *recorder) add(e string) bool {
	r.events = append(r.events, e)
	return e != r.abortOn
}

func (r *recorder) Null() bool            { return r.add("null") }
func (r *recorder) Bool(v bool) bool      { return r.add(fmt.Sprintf("bool:%v", v)) }
func (r *recorder) Integer(v int64) bool  { return r.add(fmt.Sprintf("int:%d", v)) }
func (r *recorder) Double(v float64) bool { return r.add(fmt.Sprintf("double:%g", v)) }
func (r *recorder) String(v string) bool  { return r.add("str:" + v) }
func (r *recorder) StartMap() bool        { return r.add("{") }
func (r *recorder) MapKey(k string) bool  { return r.add("key:" + k) }
func (r *recorder) EndMap() bool          { return r.add("}") }
func (r *recorder) StartArray() bool      { return r.add("[") }
func (r *recorder) EndArray() bool        { return r.add("]") }

const doc = `{"duration": 5000, "title": "A", "ok": true, "none": null, "ratio": 0.5,
 "tracks": [{"stream_url": "http://x/y"}, {}], "empty": []}`

var docEvents = []string{
	"{",
	"key:duration", "int:5000",
	"key:title", "str:A",
	"key:ok", "bool:true",
	"key:none", "null",
	"key:ratio", "double:0.5",
	"key:tracks", "[", "{", "key:stream_url", "str:http://x/y", "}", "{", "}", "]",
	"key:empty", "[", "]",
	"}",
}

func TestDecodeEvents(t *testing.T) {
	r := &recorder{}
	require.NoError(t, Decode(strings.NewReader(doc), r, 0))
	assert.Equal(t, docEvents, r.events)
}

func TestDecodeArbitraryChunking(t *testing.T) {
	for _, size := range []int{1, 2, 3, 7, 64} {
		t.Run(fmt.Sprintf("buf=%d", size), func(t *testing.T) {
			r := &recorder{}
			err := Decode(iotest.OneByteReader(strings.NewReader(doc)), r, size)
			require.NoError(t, err)
			assert.Equal(t, docEvents, r.events)
		})
	}
}

func TestDecodeTopLevelScalar(t *testing.T) {
	r := &recorder{}
	require.NoError(t, Decode(strings.NewReader("42"), r, 0))
	assert.Equal(t, []string{"int:42"}, r.events)
}

func TestDecodeSyntaxErrors(t *testing.T) {
	for _, input := range []string{
		``,
		`{"a": 1`,
		`{"a": "unterminated`,
		`[1, 2`,
		`{"a" 1}`,
		`{"a": tru}`,
		`{]`,
		`{"a": 1} garbage`,
		`{"a": 1} {}`,
		`[1] ]`,
		`42 43`,
		`{"duration": 99999999999999999999}`,
	} {
		t.Run(input, func(t *testing.T) {
			err := Decode(strings.NewReader(input), &recorder{}, 0)
			require.Error(t, err)
			var syntaxErr *SyntaxError
			assert.True(t, errors.As(err, &syntaxErr), "got %v", err)
		})
	}
}

func TestDecodeAllowsTrailingWhitespace(t *testing.T) {
	r := &recorder{}
	require.NoError(t, Decode(strings.NewReader("{\"a\": 1}\n\t \n"), r, 2))
	assert.Equal(t, []string{"{", "key:a", "int:1", "}"}, r.events)
}

func TestDecodeNumberKinds(t *testing.T) {
	r := &recorder{}
	require.NoError(t, Decode(strings.NewReader(`[-9223372036854775808, 1.5, 2e3]`), r, 0))
	assert.Equal(t, []string{"[", "int:-9223372036854775808", "double:1.5", "double:2000", "]"}, r.events)
}

func TestDecodeAbort(t *testing.T) {
	r := &recorder{abortOn: "key:title"}
	err := Decode(strings.NewReader(doc), r, 0)
	assert.ErrorIs(t, err, ErrAborted)
	assert.Equal(t, "key:title", r.events[len(r.events)-1])
}

func TestCallbacksIgnoreUnsetEvents(t *testing.T) {
	var keys []string
	var ints []int64
	cb := &Callbacks{
		OnMapKey:  func(k string) bool { keys = append(keys, k); return true },
		OnInteger: func(v int64) bool { ints = append(ints, v); return true },
	}
	require.NoError(t, Decode(strings.NewReader(doc), cb, 16))
	assert.Equal(t, []string{"duration", "title", "ok", "none", "ratio", "tracks", "stream_url", "empty"}, keys)
	assert.Equal(t, []int64{5000}, ints)
}
