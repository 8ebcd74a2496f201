// Package topology builds health graphs from declarative YAML definitions.
//
// A definition lists nodes, their check kinds, and their dependency edges:
//
//	roots: [api]
//	nodes:
//	  - name: api
//	    check: http
//	    params:
//	      url: ${API_URL}/healthz
//	    depends_on:
//	      - target: database
//	        importance: required
//	      - target: cache
//	        importance: optional
//	  - name: database
//	    check: tcp
//	    params:
//	      addr: ${DB_ADDR}
//	  - name: cache
//
// Check kinds resolve through a Registry of factories supplied by the host;
// a node without a check kind is a pure composite. Param values may
// reference environment variables with `${VAR}` (strict: missing variables
// fail the build) or `$VAR` (best effort); `$$` escapes a literal dollar.
//
// Explicit roots build the graph with graph.New. When roots are omitted the
// graph is rooted automatically with graph.Detect, which requires exactly
// one node free of incoming edges.
package topology
