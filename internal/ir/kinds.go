package ir

import "fmt"

// EntityKind enumerates the node kinds the extractor produces.
type EntityKind int

const (
	KindUnknown EntityKind = iota
	KindTranslationUnit
	KindNamespace
	KindClassDecl
	KindStructDecl
	KindUnionDecl
	KindEnumDecl
	KindEnumConstantDecl
	KindFunctionDecl
	KindMethod
	KindConstructor
	KindDestructor
	KindVarDecl
	KindFieldDecl
	KindParmDecl
	KindTypedefDecl
	KindTypeAliasDecl
	KindCStyleCastExpr
)

var entityKindNames = [...]string{
	KindUnknown:          "Unknown",
	KindTranslationUnit:  "TranslationUnit",
	KindNamespace:        "Namespace",
	KindClassDecl:        "ClassDecl",
	KindStructDecl:       "StructDecl",
	KindUnionDecl:        "UnionDecl",
	KindEnumDecl:         "EnumDecl",
	KindEnumConstantDecl: "EnumConstantDecl",
	KindFunctionDecl:     "FunctionDecl",
	KindMethod:           "Method",
	KindConstructor:      "Constructor",
	KindDestructor:       "Destructor",
	KindVarDecl:          "VarDecl",
	KindFieldDecl:        "FieldDecl",
	KindParmDecl:         "ParmDecl",
	KindTypedefDecl:      "TypedefDecl",
	KindTypeAliasDecl:    "TypeAliasDecl",
	KindCStyleCastExpr:   "CStyleCastExpr",
}

func (k EntityKind) String() string {
	if k >= 0 && int(k) < len(entityKindNames) {
		return entityKindNames[k]
	}
	return fmt.Sprintf("EntityKind(%d)", int(k))
}

// IsFunction reports free functions, methods, constructors and destructors.
func (k EntityKind) IsFunction() bool {
	return k == KindFunctionDecl || k == KindMethod || k == KindConstructor || k == KindDestructor
}

// IsAggregate reports class, struct, union and enum declarations.
func (k EntityKind) IsAggregate() bool {
	return k == KindClassDecl || k == KindStructDecl || k == KindUnionDecl || k == KindEnumDecl
}

// IsRecord reports class and struct declarations only.
func (k EntityKind) IsRecord() bool {
	return k == KindClassDecl || k == KindStructDecl
}

// IsVariable reports variables and fields (parameters are excluded).
func (k EntityKind) IsVariable() bool {
	return k == KindVarDecl || k == KindFieldDecl
}

// IsScope reports kinds that can own named declarations.
func (k EntityKind) IsScope() bool {
	return k == KindTranslationUnit || k == KindNamespace || k.IsAggregate()
}

// TypeKind mirrors the clang type kinds the classifier distinguishes.
type TypeKind int

const (
	TypeInvalid TypeKind = iota
	TypeBuiltin
	TypeRecord
	TypeEnum
	TypeTypedef
	TypeElaborated
	TypeAuto
	TypeUnexposed
	TypePointer
	TypeBlockPointer
	TypeMemberPointer
	TypeLValueReference
	TypeRValueReference
	TypeConstantArray
	TypeIncompleteArray
	TypeVariableArray
	TypeDependentSizedArray
	TypeFunctionProto
)

var typeKindNames = [...]string{
	TypeInvalid:             "Invalid",
	TypeBuiltin:             "Builtin",
	TypeRecord:              "Record",
	TypeEnum:                "Enum",
	TypeTypedef:             "Typedef",
	TypeElaborated:          "Elaborated",
	TypeAuto:                "Auto",
	TypeUnexposed:           "Unexposed",
	TypePointer:             "Pointer",
	TypeBlockPointer:        "BlockPointer",
	TypeMemberPointer:       "MemberPointer",
	TypeLValueReference:     "LValueReference",
	TypeRValueReference:     "RValueReference",
	TypeConstantArray:       "ConstantArray",
	TypeIncompleteArray:     "IncompleteArray",
	TypeVariableArray:       "VariableArray",
	TypeDependentSizedArray: "DependentSizedArray",
	TypeFunctionProto:       "FunctionProto",
}

func (k TypeKind) String() string {
	if k >= 0 && int(k) < len(typeKindNames) {
		return typeKindNames[k]
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}
