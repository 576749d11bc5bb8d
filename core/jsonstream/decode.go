// Package jsonstream 是一个事件驱动的增量 JSON 解码器。
//
// Decode 按块从 io.Reader 读取数据，每遇到一个标量或结构边界就回调
// Handler，调用方无需把整个文档读入内存，也不需要定义对应的结构体。
package jsonstream

import (
	"errors"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// DefaultBufferSize 每次从底层流读取的字节数
const DefaultBufferSize = 4096

// ErrAborted Handler 返回 false 时中止解码
var ErrAborted = errors.New("jsonstream: aborted by handler")

var (
	errTrailingGarbage = errors.New("trailing garbage")
	errIntegerOverflow = errors.New("integer overflow")
)

// SyntaxError 文档不完整或格式错误；Offset 为出错时已读取的字节数
type SyntaxError struct {
	Offset int64
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("jsonstream: syntax error after %d bytes: %v", e.Offset, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Handler 接收解码事件，任何一个方法返回 false 都会中止解码
type Handler interface {
	Null() bool
	Bool(v bool) bool
	Integer(v int64) bool
	Double(v float64) bool
	String(v string) bool
	StartMap() bool
	MapKey(key string) bool
	EndMap() bool
	StartArray() bool
	EndArray() bool
}

// Callbacks 用函数表实现 Handler，未设置的回调忽略对应事件
type Callbacks struct {
	OnNull       func() bool
	OnBool       func(bool) bool
	OnInteger    func(int64) bool
	OnDouble     func(float64) bool
	OnString     func(string) bool
	OnStartMap   func() bool
	OnMapKey     func(string) bool
	OnEndMap     func() bool
	OnStartArray func() bool
	OnEndArray   func() bool
}

func (c *Callbacks) Null() bool {
	return c.OnNull == nil || c.OnNull()
}

func (c *Callbacks) Bool(v bool) bool {
	return c.OnBool == nil || c.OnBool(v)
}

func (c *Callbacks) Integer(v int64) bool {
	return c.OnInteger == nil || c.OnInteger(v)
}

func (c *Callbacks) Double(v float64) bool {
	return c.OnDouble == nil || c.OnDouble(v)
}

func (c *Callbacks) String(v string) bool {
	return c.OnString == nil || c.OnString(v)
}

func (c *Callbacks) StartMap() bool {
	return c.OnStartMap == nil || c.OnStartMap()
}

func (c *Callbacks) MapKey(key string) bool {
	return c.OnMapKey == nil || c.OnMapKey(key)
}

func (c *Callbacks) EndMap() bool {
	return c.OnEndMap == nil || c.OnEndMap()
}

func (c *Callbacks) StartArray() bool {
	return c.OnStartArray == nil || c.OnStartArray()
}

func (c *Callbacks) EndArray() bool {
	return c.OnEndArray == nil || c.OnEndArray()
}

// countingReader 记录已经交给解析器的字节数
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Decode 解码 r 中的一个 JSON 值，bufSize <= 0 时使用 DefaultBufferSize
func Decode(r io.Reader, h Handler, bufSize int) error {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	cr := &countingReader{r: r}
	it := jsoniter.Parse(jsoniter.ConfigDefault, cr, bufSize)
	w := &walker{it: it, h: h}

	complete := w.value()
	if w.aborted {
		return ErrAborted
	}
	// 顶层是裸数字时，解析器会读到流末尾并留下 io.EOF
	if !complete || it.Error != nil && !errors.Is(it.Error, io.EOF) {
		err := it.Error
		if err == nil {
			err = errors.New("incomplete document")
		}
		return &SyntaxError{Offset: cr.n, Err: err}
	}

	// 顶层值之后只允许空白
	it.WhatIsNext()
	if !errors.Is(it.Error, io.EOF) {
		err := it.Error
		if err == nil {
			err = errTrailingGarbage
		}
		return &SyntaxError{Offset: cr.n, Err: err}
	}
	return nil
}

type walker struct {
	it      *jsoniter.Iterator
	h       Handler
	aborted bool
}

// emit 记录 handler 的中止请求
func (w *walker) emit(ok bool) bool {
	if !ok {
		w.aborted = true
	}
	return ok
}

// failed 报告解析器是否在当前值内部出错
func (w *walker) failed() bool {
	return w.it.Error != nil && !errors.Is(w.it.Error, io.EOF)
}

func (w *walker) value() bool {
	it := w.it
	switch it.WhatIsNext() {
	case jsoniter.ObjectValue:
		if !w.emit(w.h.StartMap()) {
			return false
		}
		ok := it.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			return w.emit(w.h.MapKey(key)) && w.value()
		})
		if !ok || w.aborted {
			return false
		}
		return w.emit(w.h.EndMap())

	case jsoniter.ArrayValue:
		if !w.emit(w.h.StartArray()) {
			return false
		}
		ok := it.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			return w.value()
		})
		if !ok || w.aborted {
			return false
		}
		return w.emit(w.h.EndArray())

	case jsoniter.StringValue:
		s := it.ReadString()
		if it.Error != nil {
			return false
		}
		return w.emit(w.h.String(s))

	case jsoniter.NumberValue:
		n := it.ReadNumber()
		if w.failed() {
			return false
		}
		if i, err := n.Int64(); err == nil {
			return w.emit(w.h.Integer(i))
		}
		// 没有小数点和指数的数字必须放得进 int64
		if !strings.ContainsAny(string(n), ".eE") {
			it.ReportError("ReadNumber", errIntegerOverflow.Error())
			return false
		}
		f, err := n.Float64()
		if err != nil {
			it.ReportError("ReadNumber", err.Error())
			return false
		}
		return w.emit(w.h.Double(f))

	case jsoniter.BoolValue:
		b := it.ReadBool()
		if w.failed() {
			return false
		}
		return w.emit(w.h.Bool(b))

	case jsoniter.NilValue:
		it.ReadNil()
		if w.failed() {
			return false
		}
		return w.emit(w.h.Null())

	default:
		if it.Error == nil {
			it.ReportError("WhatIsNext", "invalid value")
		}
		return false
	}
}
