package asmutable

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/commands"
	"github.com/leanovate/gopter/gen"
	"github.com/stretchr/testify/assert"
)

// absent marks a hole in the model of a sequence.
const absent = -1

const (
	nIndices       = 16
	maxModelLength = 24
)

var arrayCmdCount = 0

// expectedArray models a sequence Facade as a []int with holes.
type expectedArray struct {
	values     []int
	originKeys []Key
	logged     []Key
}

func (e *expectedArray) clone() *expectedArray {
	return &expectedArray{
		values:     append([]int(nil), e.values...),
		originKeys: e.originKeys,
		logged:     append([]Key(nil), e.logged...),
	}
}

func (e *expectedArray) log(k Key) {
	for _, l := range e.logged {
		if l == k {
			return
		}
	}
	e.logged = append(e.logged, k)
}

func (e *expectedArray) present(k Key) bool {
	if k == LengthKey {
		return true
	}
	i, ok := k.index()
	return ok && i < len(e.values) && e.values[i] != absent
}

func (e *expectedArray) resize(n int) {
	for i := n; i < len(e.values); i++ {
		if e.values[i] != absent {
			e.log(Index(i))
		}
	}
	for len(e.values) < n {
		e.values = append(e.values, absent)
	}
	e.values = e.values[:n]
	e.log(LengthKey)
}

// facadeKeys orders keys the way a Facade lists them: the origin's first,
// then those the log introduced.
func (e *expectedArray) facadeKeys() []Key {
	var keys []Key
	inOrigin := map[Key]bool{}
	for _, k := range e.originKeys {
		inOrigin[k] = true
		if e.present(k) {
			keys = append(keys, k)
		}
	}
	for _, k := range e.logged {
		if !inOrigin[k] && e.present(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// plainKeys orders keys the way a plain Array lists them.
func (e *expectedArray) plainKeys() []Key {
	var keys []Key
	for i, v := range e.values {
		if v != absent {
			keys = append(keys, Index(i))
		}
	}
	return append(keys, LengthKey)
}

func (e *expectedArray) plain() []interface{} {
	plain := make([]interface{}, len(e.values))
	for i, v := range e.values {
		if v != absent {
			plain[i] = v
		}
	}
	return plain
}

type arraySystem struct {
	origin       *Array
	originDigest string
	f            *Facade
	cmdCount     int
}

type indexEntry struct {
	Index uint
	Value uint
}

type setIndexCommand indexEntry

func (e setIndexCommand) Run(s commands.SystemUnderTest) commands.Result {
	s.(*arraySystem).f.Set(Index(int(e.Index)), int(e.Value))
	s.(*arraySystem).cmdCount++
	return nil
}

func (e setIndexCommand) NextState(state commands.State) commands.State {
	next := state.(*expectedArray).clone()
	i := int(e.Index)
	if i >= len(next.values) {
		next.resize(i + 1)
	}
	next.values[i] = int(e.Value)
	next.log(Index(i))
	return next
}

func (e setIndexCommand) PreCondition(state commands.State) bool {
	return true
}

func (e setIndexCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	progress(e)
	return verdict(result == nil)
}

func (e setIndexCommand) String() string {
	return fmt.Sprintf("Set(%d,%d)", e.Index, e.Value)
}

var genSetIndex = gen.Struct(reflect.TypeOf(&indexEntry{}), map[string]gopter.Gen{
	"Index": gen.UIntRange(0, maxModelLength-1),
	"Value": gen.UIntRange(0, valueMax),
}).Map(func(entry indexEntry) commands.Command {
	return setIndexCommand(entry)
})

type setLengthCommand uint

func (n setLengthCommand) Run(s commands.SystemUnderTest) commands.Result {
	s.(*arraySystem).f.Set(LengthKey, int(n))
	s.(*arraySystem).cmdCount++
	return nil
}

func (n setLengthCommand) NextState(state commands.State) commands.State {
	next := state.(*expectedArray).clone()
	next.resize(int(n))
	return next
}

func (n setLengthCommand) PreCondition(state commands.State) bool {
	return true
}

func (n setLengthCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	progress(n)
	return verdict(result == nil)
}

func (n setLengthCommand) String() string {
	return fmt.Sprintf("SetLength(%d)", uint(n))
}

var genSetLength = rangedCommandGen(maxModelLength,
	func(n uint) commands.Command { return setLengthCommand(n) },
	func(command interface{}) uint { return uint(command.(setLengthCommand)) })

type deleteIndexCommand uint

func (n deleteIndexCommand) Run(s commands.SystemUnderTest) commands.Result {
	s.(*arraySystem).cmdCount++
	return s.(*arraySystem).f.Delete(Index(int(n)))
}

func (n deleteIndexCommand) NextState(state commands.State) commands.State {
	next := state.(*expectedArray).clone()
	k := Index(int(n))
	if next.present(k) {
		next.values[n] = absent
		next.log(k)
	}
	return next
}

func (n deleteIndexCommand) PreCondition(state commands.State) bool {
	return true
}

func (n deleteIndexCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	if ok, _ := result.(bool); !ok {
		fmt.Printf("deleteIndexPostCondition: %v\n", result)
		return verdict(false)
	}
	progress(n)
	return verdict(true)
}

func (n deleteIndexCommand) String() string {
	return fmt.Sprintf("Delete(%d)", uint(n))
}

var genDeleteIndex = rangedCommandGen(maxModelLength-1,
	func(n uint) commands.Command { return deleteIndexCommand(n) },
	func(command interface{}) uint { return uint(command.(deleteIndexCommand)) })

type getIndexCommand uint

func (n getIndexCommand) Run(s commands.SystemUnderTest) commands.Result {
	f := s.(*arraySystem).f
	k := Index(int(n))
	v, ok := f.Get(k)
	s.(*arraySystem).cmdCount++
	return getResult{value: v, ok: ok, has: f.Has(k)}
}

func (n getIndexCommand) NextState(state commands.State) commands.State {
	return state
}

func (n getIndexCommand) PreCondition(state commands.State) bool {
	return true
}

func (n getIndexCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	e := state.(*expectedArray)
	ok := e.present(Index(int(n)))
	got := result.(getResult)
	if got.ok != ok || got.has != ok || ok && got.value != e.values[n] {
		fmt.Printf("getIndexPostCondition: (%d) expected=%v actual=%+v\n", uint(n), e.values, got)
		return verdict(false)
	}
	progress(n)
	return verdict(true)
}

func (n getIndexCommand) String() string {
	return fmt.Sprintf("Get(%d)", uint(n))
}

var genGetIndex = rangedCommandGen(maxModelLength-1,
	func(n uint) commands.Command { return getIndexCommand(n) },
	func(command interface{}) uint { return uint(command.(getIndexCommand)) })

var ArrayOwnKeysCommand = &commands.ProtoCommand{
	Name: "OwnKeys",
	RunFunc: func(s commands.SystemUnderTest) commands.Result {
		s.(*arraySystem).cmdCount++
		return s.(*arraySystem).f.OwnKeys()
	},
	NextStateFunc:    func(state commands.State) commands.State { return state },
	PreConditionFunc: func(state commands.State) bool { return true },
	PostConditionFunc: func(state commands.State, result commands.Result) *gopter.PropResult {
		want := state.(*expectedArray).facadeKeys()
		if !sameKeys(want, result.([]Key)) {
			fmt.Printf("arrayOwnKeysPostCondition: expected=%v actual=%v\n", want, result)
			return verdict(false)
		}
		progress("OwnKeys")
		return verdict(true)
	},
}

type arrayUnwrapResult struct {
	values []interface{}
	length int
	keys   []Key
}

// ArrayUnwrapCommand materializes the Facade and checks the origin still
// hashes the way it did before any command ran.
var ArrayUnwrapCommand = &commands.ProtoCommand{
	Name: "Unwrap",
	RunFunc: func(s commands.SystemUnderTest) commands.Result {
		sys := s.(*arraySystem)
		sys.cmdCount++
		c, err := sys.f.Materialize()
		if err != nil {
			return err
		}
		digest, err := Digest(sys.origin)
		if err != nil {
			return err
		}
		if digest != sys.originDigest {
			return fmt.Errorf("origin changed: %s != %s", digest, sys.originDigest)
		}
		a, ok := c.(*Array)
		if !ok {
			return fmt.Errorf("materialized %T", c)
		}
		return arrayUnwrapResult{values: a.Values(), length: a.Len(), keys: a.OwnKeys()}
	},
	NextStateFunc:    func(state commands.State) commands.State { return state },
	PreConditionFunc: func(state commands.State) bool { return true },
	PostConditionFunc: func(state commands.State, result commands.Result) *gopter.PropResult {
		got, ok := result.(arrayUnwrapResult)
		if !ok {
			fmt.Printf("arrayUnwrapPostCondition: %v\n", result)
			return verdict(false)
		}
		e := state.(*expectedArray)
		want := e.plain()
		if !reflect.DeepEqual(want, got.values) || got.length != len(e.values) || !sameKeys(e.plainKeys(), got.keys) {
			fmt.Printf("arrayUnwrapPostCondition: expected=%v %v actual=%v %v\n", want, e.plainKeys(), got.values, got.keys)
			return verdict(false)
		}
		progress("Unwrap")
		return verdict(true)
	},
}

type arrayInit struct {
	Values []int
	Length uint
}

var arrayCommands = &commands.ProtoCommands{
	NewSystemUnderTestFunc: func(initialState commands.State) commands.SystemUnderTest {
		e := initialState.(*expectedArray)
		origin := NewArray()
		for i, v := range e.values {
			if v != absent {
				origin.Set(Index(i), v)
			}
		}
		origin.Set(LengthKey, len(e.values))
		digest, err := Digest(origin)
		if err != nil {
			return err
		}
		progress("NewSystem")
		return &arraySystem{
			origin:       origin,
			originDigest: digest,
			f:            Wrap(origin).(*Facade),
		}
	},
	DestroySystemUnderTestFunc: func(s commands.SystemUnderTest) {
		arrayCmdCount += s.(*arraySystem).cmdCount
	},
	InitialStateGen: gen.Struct(reflect.TypeOf(&arrayInit{}), map[string]gopter.Gen{
		"Values": gen.SliceOfN(nIndices, gen.IntRange(absent, valueMax)),
		"Length": gen.UIntRange(0, nIndices),
	}).Map(func(initial arrayInit) *expectedArray {
		e := &expectedArray{values: append([]int(nil), initial.Values[:initial.Length]...)}
		for i, v := range e.values {
			if v != absent {
				e.originKeys = append(e.originKeys, Index(i))
			}
		}
		e.originKeys = append(e.originKeys, LengthKey)
		return e
	}),
	InitialPreConditionFunc: func(state commands.State) bool {
		_ = state.(*expectedArray)
		return true
	},
	GenCommandFunc: func(state commands.State) gopter.Gen {
		return gen.Weighted(
			[]gen.WeightedGen{
				{Weight: 100, Gen: genSetIndex},
				{Weight: 30, Gen: genSetLength},
				{Weight: 60, Gen: genDeleteIndex},
				{Weight: 100, Gen: genGetIndex},
				{Weight: 20, Gen: gen.Const(ArrayOwnKeysCommand)},
				{Weight: 20, Gen: gen.Const(ArrayUnwrapCommand)},
			},
		)
	},
}

func TestArrayExerciser(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	if !testing.Short() {
		parameters.MaxSize = 512
	}
	properties := gopter.NewProperties(parameters)
	properties.Property("sequence facade exerciser", commands.Prop(arrayCommands))
	properties.TestingRun(t)
	if !t.Failed() {
		assert.Greater(t, arrayCmdCount, 0)
		fmt.Printf("successful sequence commands: %d\n", arrayCmdCount)
	}
}
