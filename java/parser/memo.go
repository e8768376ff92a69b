package parser

// ruleID names a memoized grammar rule.
type ruleID uint8

const (
	ruleType ruleID = iota
	ruleTypeArguments
	ruleCast
	ruleLambda
	ruleLocalVarHead
	ruleGenericRef
	ruleCount
)

var ruleNames = [...]string{
	ruleType:          "type",
	ruleTypeArguments: "typeArguments",
	ruleCast:          "cast",
	ruleLambda:        "lambda",
	ruleLocalVarHead:  "localVarHead",
	ruleGenericRef:    "genericRef",
}

func (r ruleID) String() string {
	if int(r) < len(ruleNames) {
		return ruleNames[r]
	}
	return "rule?"
}

type memoKey struct {
	rule ruleID
	pos  int32
}

// outcome is the result of applying a rule at a position. A nil node is a
// failure. furthest holds the failures the rule recorded on the way, so a
// replay reports the same expectations as a fresh run.
type outcome struct {
	node     *Node
	end      int
	furthest failure
}

func (o outcome) ok() bool { return o.node != nil }

// memoTable caches rule outcomes for one unit. Entries are only valid for
// the token buffer they were computed on.
type memoTable struct {
	entries map[memoKey]outcome
	hits    int
	misses  int
}

func newMemoTable() *memoTable {
	return &memoTable{entries: make(map[memoKey]outcome)}
}

func (m *memoTable) get(rule ruleID, pos int) (outcome, bool) {
	o, ok := m.entries[memoKey{rule, int32(pos)}]
	if ok {
		m.hits++
	} else {
		m.misses++
	}
	return o, ok
}

func (m *memoTable) put(rule ruleID, pos int, o outcome) {
	m.entries[memoKey{rule, int32(pos)}] = o
}

func (m *memoTable) len() int { return len(m.entries) }
