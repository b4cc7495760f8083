/*
Package indirect demonstrates and packages two kinds of indirect function invocation.

# License

Source codes are under Apache License Version 2.0.

# Intra-module calls

A [Table] holds exactly two [Callable] entries fixed at construction time.
[Table.Lookup] selects the first entry for index 0 and the second entry for every other index,
including indices outside {0, 1}. Use [Table.Checked] when a bounds error is wanted instead.

# Inter-module calls

A [Resolver] loads a module through a [Loader], resolves callables by symbol name and invokes them.
Three loaders are shipped:

 1. [SharedLoader] maps a platform shared object with [purego] (dlopen with lazy binding by default).
 2. object.ObjectLoader, in package object, links a relocatable Go object file at runtime with [goloader].
 3. [Registry] is an explicit in-process table of named callables.

A missing symbol is not an error unless the Resolver is strict, and a module that fails to load
yields an absent [Handle] that the caller must check with [Handle.Loaded].

# Notes

 1. A Handle is owned by one goroutine. Neither Resolver nor Handle are thread-safe.
 2. Prefer [Resolver.Use], which releases the module on every exit path.
 3. For [goloader]'s limitation, only exported functions of an object file can be resolved.
 4. Package trace classifies recorded indirect branches as intra-module or inter-module calls.

# Use the object loader on develop stage or compile distribution binaries

Only package object and the harness built with the goloader tag depend on [goloader]. Everything else builds on a stock GO sdk.

  - 1. Prepare GO sdk

    use the compile cli tool of github.com/ZenLiuCN/dynamic via `compile prepare`, which copies
    $GOROOT/src/cmd/internal to $GOROOT/src/cmd/objfile.

  - 2. Work around with the object modules

  - 3. Restore the GO SDK

    use `compile clean`.

# Harness

The harness command runs the demonstration:

	go run github.com/ZenLiuCN/indirect/harness -m ./libtest_module.so
	go run -tags goloader github.com/ZenLiuCN/indirect/harness -o -k external -s ExternalFunc1 external.a

See the cli help for more:

	harness -h

[goloader]: https://github.com/pkujhd/goloader
[purego]: https://github.com/ebitengine/purego
*/
package indirect
