package lexer

import "fuzzyhl/internal/lang"

var cKeywords = []string{
	"auto", "break", "case", "char", "const", "continue", "default", "do",
	"double", "else", "enum", "extern", "float", "for", "goto", "if", "inline",
	"int", "long", "register", "restrict", "return", "short", "signed",
	"sizeof", "static", "struct", "switch", "typedef", "union", "unsigned",
	"void", "volatile", "while",
	"_Alignas", "_Alignof", "_Atomic", "_Bool", "_Complex", "_Generic",
	"_Imaginary", "_Noreturn", "_Static_assert", "_Thread_local",
	"alignas", "alignof", "bool", "constexpr", "false", "nullptr",
	"static_assert", "thread_local", "true", "typeof", "typeof_unqual",
	"__attribute__", "__attribute", "__asm__", "__asm", "__inline__",
	"__inline", "__restrict__", "__restrict", "__typeof__", "__typeof",
	"__extension__", "__volatile__", "__const__", "__const", "__signed__",
	"__signed", "__alignof__", "__thread", "__int128", "__declspec",
	"__func__", "__builtin_va_arg", "__builtin_offsetof",
}

var cppOnlyKeywords = []string{
	"and", "and_eq", "asm", "bitand", "bitor", "catch", "char8_t", "char16_t",
	"char32_t", "class", "co_await", "co_return", "co_yield", "compl",
	"concept", "const_cast", "consteval", "constinit", "decltype", "delete",
	"dynamic_cast", "explicit", "export", "friend", "mutable", "namespace",
	"new", "noexcept", "not", "not_eq", "operator", "or", "or_eq", "private",
	"protected", "public", "reinterpret_cast", "requires", "static_cast",
	"template", "this", "throw", "try", "typeid", "typename", "using",
	"virtual", "wchar_t", "xor", "xor_eq",
}

var (
	cKeywordSet   = makeSet(cKeywords)
	cppKeywordSet = makeSet(cKeywords, cppOnlyKeywords)
)

func makeSet(lists ...[]string) map[string]bool {
	out := make(map[string]bool)
	for _, list := range lists {
		for _, kw := range list {
			out[kw] = true
		}
	}
	return out
}

func keywordSet(dialect lang.ID) map[string]bool {
	if dialect == lang.C {
		return cKeywordSet
	}
	return cppKeywordSet
}

// IsKeyword reports whether word is in the fixed keyword set of dialect.
// Any dialect other than lang.C uses the C++ set.
func IsKeyword(word string, dialect lang.ID) bool {
	return keywordSet(dialect)[word]
}
