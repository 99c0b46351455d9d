package errors

// Error codes for the sigil compiler.
//
// Error code ranges:
// E0001-E0099: Parse errors
// E0100-E0199: Declaration errors
// E0200-E0299: Call and expression errors
// E0300-E0399: Mutation safety and state access errors
// E0400-E0499: Import/module errors
// E0500-E0599: Code generation errors
// E0900-E0999: Internal compiler errors

const (
	// E0001: Syntax errors reported by the parser
	ErrorSyntax = "E0001"

	// E0002: Lexical errors reported by the scanner
	ErrorLexical = "E0002"

	// E0100: Malformed function declaration
	ErrorFunctionDeclaration = "E0100"

	// E0101: Function has no visibility decorator
	ErrorMissingVisibility = "E0101"

	// E0102: Visibility or mutability given more than once
	ErrorDuplicateDecorator = "E0102"

	// E0103: Decorator is not recognized
	ErrorUnknownDecorator = "E0103"

	// E0104: Decorator used with the wrong call form
	ErrorDecoratorSyntax = "E0104"

	// E0105: Re-entrancy lock not allowed here
	ErrorInvalidReentrancy = "E0105"

	// E0106: Constructor rules violated
	ErrorInvalidConstructor = "E0106"

	// E0107: Fallback function rules violated
	ErrorInvalidFallback = "E0107"

	// E0108: Parameter declaration errors
	ErrorInvalidParameter = "E0108"

	// E0109: Duplicate declarations in one scope
	ErrorDuplicateDeclaration = "E0109"

	// E0110: Default value is not a compile-time constant
	ErrorInvalidDefault = "E0110"

	// E0111: Type annotation does not resolve
	ErrorUnknownType = "E0111"

	// E0112: Interface declaration errors
	ErrorInterfaceDeclaration = "E0112"

	// E0113: Contract does not satisfy an implemented interface
	ErrorInterfaceNotImplemented = "E0113"

	// E0114: Two external functions hash to the same selector
	ErrorSelectorCollision = "E0114"

	// E0115: Constant declaration errors
	ErrorInvalidConstant = "E0115"

	// E0116: Statement used where it is not allowed
	ErrorStructure = "E0116"

	// E0117: Function with a return type can finish without returning
	ErrorMissingReturn = "E0117"

	// E0118: Name is not defined
	ErrorUndefinedName = "E0118"

	// E0200: Wrong number of call arguments
	ErrorArgumentCount = "E0200"

	// E0201: Keyword argument is not accepted by the target
	ErrorUnknownKeyword = "E0201"

	// E0202: Call target cannot be reached through the receiver
	ErrorCallViolation = "E0202"

	// E0203: Value sent to a function that is not payable
	ErrorNonPayable = "E0203"

	// E0204: Keyword argument must be a literal
	ErrorLiteralRequired = "E0204"

	// E0205: Expression type does not match expected type
	ErrorTypeMismatch = "E0205"

	// E0206: Literal does not fit its type
	ErrorInvalidLiteral = "E0206"

	// E0207: Expression is not callable
	ErrorNotCallable = "E0207"

	// E0208: Operator not supported for operand types
	ErrorInvalidOperation = "E0208"

	// E0209: Member does not exist on the value
	ErrorUnknownMember = "E0209"

	// E0300: Loop iterator modified inside the loop
	ErrorImmutableViolation = "E0300"

	// E0301: State accessed in a context that forbids it
	ErrorStateAccessViolation = "E0301"

	// E0400: Imported module could not be found
	ErrorModuleNotFound = "E0400"

	// E0401: Modules import each other
	ErrorImportCycle = "E0401"

	// E0500: Construct type-checks but has no code generation
	ErrorUnsupported = "E0500"

	// E0900: Compiler invariant violated
	ErrorCompilerPanic = "E0900"
)

// GetErrorDescription returns a human-readable description of the error code
func GetErrorDescription(code string) string {
	switch code {
	case ErrorSyntax:
		return "Source does not match the language grammar"
	case ErrorLexical:
		return "Source contains an invalid token"
	case ErrorFunctionDeclaration:
		return "Function declaration is malformed"
	case ErrorMissingVisibility:
		return "Function must be marked @external or @internal"
	case ErrorDuplicateDecorator:
		return "Visibility or mutability declared more than once"
	case ErrorUnknownDecorator:
		return "Decorator is not recognized"
	case ErrorDecoratorSyntax:
		return "Decorator called with the wrong form"
	case ErrorInvalidReentrancy:
		return "Re-entrancy lock cannot be used here"
	case ErrorInvalidConstructor:
		return "Invalid constructor definition"
	case ErrorInvalidFallback:
		return "Invalid fallback definition"
	case ErrorInvalidParameter:
		return "Invalid function parameter"
	case ErrorDuplicateDeclaration:
		return "Duplicate declaration found"
	case ErrorInvalidDefault:
		return "Default value must be a compile-time or environment constant"
	case ErrorUnknownType:
		return "Type annotation does not name a known type"
	case ErrorInterfaceDeclaration:
		return "Invalid interface declaration"
	case ErrorInterfaceNotImplemented:
		return "Contract does not implement a declared interface"
	case ErrorSelectorCollision:
		return "Methods have conflicting selectors"
	case ErrorInvalidConstant:
		return "Constant value cannot be folded"
	case ErrorStructure:
		return "Statement is not allowed here"
	case ErrorMissingReturn:
		return "Function declares a return type but may not return"
	case ErrorUndefinedName:
		return "Name is used but not defined"
	case ErrorArgumentCount:
		return "Call has the wrong number of arguments"
	case ErrorUnknownKeyword:
		return "Call uses an unrecognized keyword argument"
	case ErrorCallViolation:
		return "Function cannot be called through this receiver"
	case ErrorNonPayable:
		return "Value sent to a non-payable function"
	case ErrorLiteralRequired:
		return "Argument must be a literal"
	case ErrorTypeMismatch:
		return "Expression type does not match expected type"
	case ErrorInvalidLiteral:
		return "Literal is out of range for its type"
	case ErrorNotCallable:
		return "Expression is not callable"
	case ErrorInvalidOperation:
		return "Operation not supported for these types"
	case ErrorUnknownMember:
		return "Member does not exist"
	case ErrorImmutableViolation:
		return "Iterated value is modified inside the loop"
	case ErrorStateAccessViolation:
		return "State access not allowed in this context"
	case ErrorModuleNotFound:
		return "Imported module not found"
	case ErrorImportCycle:
		return "Import cycle detected"
	case ErrorUnsupported:
		return "Construct is not supported by the code generator"
	case ErrorCompilerPanic:
		return "Internal compiler error"
	default:
		return "Unknown error code"
	}
}

// GetErrorCategory returns the category of the error based on its code
func GetErrorCategory(code string) string {
	switch {
	case code >= "E0001" && code < "E0100":
		return "Parser"
	case code >= "E0100" && code < "E0200":
		return "Declaration"
	case code >= "E0200" && code < "E0300":
		return "Call"
	case code >= "E0300" && code < "E0400":
		return "Mutation Safety"
	case code >= "E0400" && code < "E0500":
		return "Import/Module"
	case code >= "E0500" && code < "E0600":
		return "Codegen"
	case code >= "E0900" && code < "E1000":
		return "Internal"
	default:
		return "Unknown"
	}
}
