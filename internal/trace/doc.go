// Package trace records where fglsense spends its time.
//
// Indexing a large project and answering editor requests both go through
// spans: a workspace run opens passes (references, deferred), each
// document gets an analyze and a check span, and completion requests get
// a span of their own.
//
//	fglsense index --trace=- --trace-level=detail ./project
//	fglsense diag --trace=index.chrome.json ./project
//
// A Stream writes events as they happen, a Ring keeps the last N events
// in memory and Fanout feeds several tracers at once. The level picks the
// scopes that reach a tracer: phase keeps workspace and pass events,
// detail adds documents, debug adds requests.
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeDocument, "analyze")
//	defer span.End("")
package trace
