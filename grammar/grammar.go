package grammar

// Signature is a function signature as written by a user, e.g.
// "transfer(address,uint256)" or "transfer(address to, uint256 amount)".
type Signature struct {
	Name   string   `@Ident "("`
	Params []*Param `[ @@ { "," @@ } ] ")"`
}

// Param is an ABI type with an optional, ignored parameter name.
type Param struct {
	Type *Type  `@@`
	Name string `[ @Ident ]`
}

// Type is an elementary or tuple type followed by array suffixes.
type Type struct {
	Tuple  *Tuple        `(   @@`
	Name   string        `  | @Ident )`
	Arrays []*ArraySuffix `@@*`
}

type Tuple struct {
	Components []*Type `"(" [ @@ { "," @@ } ] ")"`
}

// ArraySuffix is "[N]" or "[]".
type ArraySuffix struct {
	Size *int `"[" [ @Integer ] "]"`
}
