package binder

// builtinNames is the set of names available in every scope without an
// import or assignment, covering the commonly referenced subset of
// CPython's builtins module. It deliberately isn't exhaustive: the goal is
// to avoid false-positive undefined-name findings on ordinary code, not to
// fully model the builtins namespace.
var builtinNames = map[string]bool{
	"abs": true, "aiter": true, "anext": true, "all": true, "any": true,
	"ascii": true, "bin": true, "bool": true, "breakpoint": true,
	"bytearray": true, "bytes": true, "callable": true, "chr": true,
	"classmethod": true, "compile": true, "complex": true, "delattr": true,
	"dict": true, "dir": true, "divmod": true, "enumerate": true,
	"eval": true, "exec": true, "filter": true, "float": true,
	"format": true, "frozenset": true, "getattr": true, "globals": true,
	"hasattr": true, "hash": true, "help": true, "hex": true, "id": true,
	"input": true, "int": true, "isinstance": true, "issubclass": true,
	"iter": true, "len": true, "list": true, "locals": true, "map": true,
	"max": true, "memoryview": true, "min": true, "next": true,
	"object": true, "oct": true, "open": true, "ord": true, "pow": true,
	"print": true, "property": true, "range": true, "repr": true,
	"reversed": true, "round": true, "set": true, "setattr": true,
	"slice": true, "sorted": true, "staticmethod": true, "str": true,
	"sum": true, "super": true, "tuple": true, "type": true, "vars": true,
	"zip": true, "__import__": true,
	"True": true, "False": true, "None": true, "NotImplemented": true,
	"Ellipsis": true, "__name__": true, "__file__": true, "__doc__": true,
	"__debug__": true, "self": true, "cls": true,
	"Exception": true, "BaseException": true, "ValueError": true,
	"TypeError": true, "KeyError": true, "IndexError": true,
	"AttributeError": true, "RuntimeError": true, "StopIteration": true,
	"StopAsyncIteration": true, "NotImplementedError": true, "OSError": true,
	"IOError": true, "FileNotFoundError": true, "ImportError": true,
	"ModuleNotFoundError": true, "NameError": true, "UnboundLocalError": true,
	"ZeroDivisionError": true, "OverflowError": true, "ArithmeticError": true,
	"AssertionError": true, "KeyboardInterrupt": true, "SystemExit": true,
	"GeneratorExit": true, "Warning": true, "DeprecationWarning": true,
}
