package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewrite(t *testing.T) {
	testCases := map[string]struct {
		query    string
		expected string
	}{
		"block_object_first": {
			query:    `{ foo(block: {number: 5}, first: 10) { id } }`,
			expected: `{ foo(first: 10) { id } }`,
		},
		"block_null_only": {
			query:    `{ foo(block: null) { id } }`,
			expected: `{ foo { id } }`,
		},
		"block_object_only": {
			query:    `{ foo(block: {number: 5}) { id } }`,
			expected: `{ foo { id } }`,
		},
		"block_last": {
			query:    `{ foo(first: 10, block: {hash: "0xdeadbeef"}) { id } }`,
			expected: `{ foo(first: 10) { id } }`,
		},
		"block_middle": {
			query:    `{ foo(first: 10, block: null, skip: 5) { id } }`,
			expected: `{ foo(first: 10, skip: 5) { id } }`,
		},
		"block_without_commas": {
			query:    `{ foo(first: 10 block: null skip: 5) { id } }`,
			expected: `{ foo(first: 10 skip: 5) { id } }`,
		},
		"block_nested_object": {
			query:    `{ foo(block: {number_gte: 5, meta: {x: 1}}, first: 1) { id } }`,
			expected: `{ foo(first: 1) { id } }`,
		},
		"block_brace_in_string": {
			query:    `{ foo(block: {hash: "0x}{"}, first: 1) { id } }`,
			expected: `{ foo(first: 1) { id } }`,
		},
		"multiple_fields": {
			query:    `{ a: foo(block: null) { id } b: bar(block: {number: 1}, first: 1) { id } }`,
			expected: `{ a: foo { id } b: bar(first: 1) { id } }`,
		},
		"leading_comma": {
			query:    `{ foo(, first: 10) { id } }`,
			expected: `{ foo(first: 10) { id } }`,
		},
		"empty_arguments": {
			query:    `{ foo( ) { id } }`,
			expected: `{ foo { id } }`,
		},
		"no_block": {
			query:    `{ foo(first: 10) { id } }`,
			expected: `{ foo(first: 10) { id } }`,
		},
		"block_field_selection": {
			query:    `{ _meta { block { number hash } } }`,
			expected: `{ _meta { block { number hash } } }`,
		},
		"block_alias": {
			query:    `{ block: foo { id } }`,
			expected: `{ block: foo { id } }`,
		},
		"block_prefix_argument": {
			query:    `{ foo(blockNumber: null, subblock: null) { id } }`,
			expected: `{ foo(blockNumber: null, subblock: null) { id } }`,
		},
		"block_variable_value": {
			query:    `query($block: Block_height) { foo(block: $block) { id } }`,
			expected: `query($block: Block_height) { foo(block: $block) { id } }`,
		},
		"block_inside_string": {
			query:    `{ foo(where: {name: "block: null"}) { id } }`,
			expected: `{ foo(where: {name: "block: null"}) { id } }`,
		},
		"parentheses_inside_string": {
			query:    `{ foo(name: "()") { id } }`,
			expected: `{ foo(name: "()") { id } }`,
		},
		"comment_before_block": {
			query:    "{\n  foo(\n    first: 10 # page size\n    block: null\n  ) { id }\n}",
			expected: "{\n  foo(\n    first: 10 # page size\n    \n  ) { id }\n}",
		},
		"hash_inside_string": {
			query:    `{ foo(where: "a#b", block: null) { id } }`,
			expected: `{ foo(where: "a#b") { id } }`,
		},
		"comment_after_only_block": {
			query:    "{ foo(block: null # pinned\n) { id } }",
			expected: "{ foo { id } }",
		},
		"multiline_arguments": {
			query:    "{\n  foo(\n    block: {number: 5},\n    first: 10\n  ) { id }\n}",
			expected: "{\n  foo(\n    first: 10\n  ) { id }\n}",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			rewritten := Rewrite(tc.query)
			assert.Equal(t, tc.expected, rewritten)

			// the rewriting is applied more than once on the way to the geo node
			assert.Equal(t, rewritten, Rewrite(rewritten))
		})
	}
}

func TestRewriteRequest(t *testing.T) {
	t.Run("query_rewritten", func(t *testing.T) {
		raw := []byte(`{"query":"{ foo(block: {number: 5}, first: 10) { id } }","variables":{"a":1},"operationName":"op"}`)

		rewritten, err := RewriteRequest(raw)
		require.NoError(t, err)
		require.JSONEq(t, `{"query":"{ foo(first: 10) { id } }","variables":{"a":1},"operationName":"op"}`, string(rewritten))
	})

	t.Run("query_unchanged", func(t *testing.T) {
		raw := []byte(`{"query":"{ foo { id } }","extensions":{"x":"y"}}`)

		rewritten, err := RewriteRequest(raw)
		require.NoError(t, err)
		require.Equal(t, string(raw), string(rewritten))
	})

	t.Run("query_missing", func(t *testing.T) {
		raw := []byte(`{"variables":{}}`)

		rewritten, err := RewriteRequest(raw)
		require.NoError(t, err)
		require.Equal(t, string(raw), string(rewritten))
	})

	t.Run("query_not_string", func(t *testing.T) {
		raw := []byte(`{"query":42}`)

		rewritten, err := RewriteRequest(raw)
		require.NoError(t, err)
		require.Equal(t, string(raw), string(rewritten))
	})

	t.Run("invalid_json", func(t *testing.T) {
		_, err := RewriteRequest([]byte(`{"query":`))
		require.Error(t, err)
	})
}
