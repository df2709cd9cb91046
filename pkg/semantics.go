package zminus

type SymbolKind int

const (
	SymbolGlobal SymbolKind = iota + 1
	SymbolLocal
	SymbolParam
	SymbolFunction
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolGlobal:
		return "global"
	case SymbolLocal:
		return "local"
	case SymbolParam:
		return "parameter"
	case SymbolFunction:
		return "function"
	}

	return "unknown"
}

// reservedNames can't be declared: they are C keywords, names declared by
// the generated includes, or symbols the generated unit defines itself.
var reservedNames = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true,
	"sizeof": true, "static": true, "struct": true, "switch": true,
	"typedef": true, "union": true, "unsigned": true, "void": true,
	"volatile": true, "while": true, "_Alignas": true, "_Alignof": true,
	"_Atomic": true, "_Bool": true, "_Complex": true, "_Generic": true,
	"_Imaginary": true, "_Noreturn": true, "_Static_assert": true,
	"_Thread_local": true,

	// <stdbool.h>
	"bool": true, "true": true, "false": true,

	// <stdio.h> types, objects and macros
	"EOF": true, "NULL": true, "FILE": true, "BUFSIZ": true, "FILENAME_MAX": true,
	"FOPEN_MAX": true, "L_tmpnam": true, "L_ctermid": true, "TMP_MAX": true,
	"P_tmpdir": true, "SEEK_SET": true, "SEEK_CUR": true, "SEEK_END": true,
	"fpos_t": true, "size_t": true, "ssize_t": true, "off_t": true,
	"va_list": true, "stdin": true, "stdout": true, "stderr": true,

	// <stdio.h> functions, including the POSIX ones glibc declares by default
	"clearerr": true, "ctermid": true, "dprintf": true, "fclose": true,
	"fdopen": true, "feof": true, "ferror": true, "fflush": true,
	"fgetc": true, "fgetpos": true, "fgets": true, "fileno": true,
	"flockfile": true, "fmemopen": true, "fopen": true, "fprintf": true,
	"fputc": true, "fputs": true, "fread": true, "freopen": true,
	"fscanf": true, "fseek": true, "fseeko": true, "fsetpos": true,
	"ftell": true, "ftello": true, "ftrylockfile": true, "funlockfile": true,
	"fwrite": true, "getc": true, "getc_unlocked": true, "getchar": true,
	"getchar_unlocked": true, "getdelim": true, "getline": true, "gets": true,
	"open_memstream": true, "pclose": true, "perror": true, "popen": true,
	"printf": true, "putc": true, "putc_unlocked": true, "putchar": true,
	"putchar_unlocked": true, "puts": true, "remove": true, "rename": true,
	"renameat": true, "rewind": true, "scanf": true, "setbuf": true,
	"setvbuf": true, "snprintf": true, "sprintf": true, "sscanf": true,
	"tempnam": true, "tmpfile": true, "tmpnam": true, "ungetc": true,
	"vdprintf": true, "vfprintf": true, "vfscanf": true, "vprintf": true,
	"vscanf": true, "vsnprintf": true, "vsprintf": true, "vsscanf": true,

	"main": true,
}

// isReserved reports whether name can't be declared by a program. Names
// starting with two underscores or an underscore and a capital letter belong
// to the C implementation.
func isReserved(name string) bool {
	if reservedNames[name] {
		return true
	}

	if len(name) >= 2 && name[0] == '_' && (name[1] == '_' || (name[1] >= 'A' && name[1] <= 'Z')) {
		return true
	}

	return false
}

// Scope maps identifiers to what they name. Lookups fall through to the
// parent, so a function scope shadows the global one.
type Scope struct {
	Entries map[string]SymbolKind
	parent  *Scope
}

func NewScope(parent *Scope) *Scope {
	return &Scope{
		Entries: make(map[string]SymbolKind),
		parent:  parent,
	}
}

func (s *Scope) Add(name string, kind SymbolKind) {
	s.Entries[name] = kind
}

func (s *Scope) Get(name string) (SymbolKind, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if kind, ok := scope.Entries[name]; ok {
			return kind, true
		}
	}

	return 0, false
}

func (s *Scope) GetLocal(name string) (SymbolKind, bool) {
	kind, ok := s.Entries[name]
	return kind, ok
}

func (s *Scope) Copy() *Scope {
	s2 := NewScope(s.parent)
	for k, v := range s.Entries {
		s2.Entries[k] = v
	}

	return s2
}

type FuncInfo struct {
	Name   string
	Loc    *Location
	Params []string
	// Locals holds the names hoisted to the top of the function body, in the
	// order they are first bound. Parameters are not repeated here.
	Locals []string
	// Calls holds the functions called from the body in first-call order.
	Calls []string
}

// Names returns every variable the function declares: parameters first, then
// locals.
func (f *FuncInfo) Names() []string {
	names := make([]string, 0, len(f.Params)+len(f.Locals))
	names = append(names, f.Params...)
	return append(names, f.Locals...)
}

// SymbolTable is the resolver output consumed by the code generators.
type SymbolTable struct {
	Globals   []string
	Functions map[string]*FuncInfo
	Order     []string
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		Functions: make(map[string]*FuncInfo),
	}
}

func (t *SymbolTable) Function(name string) *FuncInfo {
	return t.Functions[name]
}

// NeedsPrototypes reports whether any function calls one that is defined
// after it, which C can only compile with forward declarations.
func (t *SymbolTable) NeedsPrototypes() bool {
	index := make(map[string]int, len(t.Order))
	for i, name := range t.Order {
		index[name] = i
	}

	for i, name := range t.Order {
		for _, callee := range t.Functions[name].Calls {
			if index[callee] > i {
				return true
			}
		}
	}

	return false
}

// Resolver checks a Program and builds its SymbolTable.
type Resolver struct {
	table *SymbolTable

	// globals sees every function and global variable; function bodies resolve
	// against it. main only sees the globals bound so far by top-level code.
	globals *Scope
	main    *Scope

	scope    *Scope
	fn       *FuncInfo
	shadowed map[string]bool
}

func NewResolver() *Resolver {
	globals := NewScope(nil)

	return &Resolver{
		table:   NewSymbolTable(),
		globals: globals,
		main:    NewScope(nil),
	}
}

func Resolve(prog *Program) (*SymbolTable, error) {
	return NewResolver().Resolve(prog)
}

func (r *Resolver) Resolve(prog *Program) (*SymbolTable, error) {
	if err := r.defineFunctions(prog); err != nil {
		return nil, err
	}

	if err := r.defineGlobals(prog); err != nil {
		return nil, err
	}

	r.scope = r.main
	for _, stmt := range prog.Statements {
		if fd, ok := stmt.(*FuncDecl); ok {
			if err := r.function(fd); err != nil {
				return nil, err
			}

			continue
		}

		if err := r.stmt(stmt); err != nil {
			return nil, err
		}
	}

	return r.table, nil
}

func (r *Resolver) defineFunctions(prog *Program) error {
	for _, stmt := range prog.Statements {
		fd, ok := stmt.(*FuncDecl)
		if !ok {
			continue
		}

		if isReserved(fd.Name) {
			return &ReservedIdentifier{Loc: fd.Loc, Name: fd.Name}
		}

		if _, exists := r.table.Functions[fd.Name]; exists {
			return &DuplicateDeclaration{Loc: fd.Loc, Name: fd.Name}
		}

		info := &FuncInfo{Name: fd.Name, Loc: fd.Loc}
		for _, param := range fd.Params {
			info.Params = append(info.Params, param.Name)
		}

		r.table.Functions[fd.Name] = info
		r.table.Order = append(r.table.Order, fd.Name)
		r.globals.Add(fd.Name, SymbolFunction)
		r.main.Add(fd.Name, SymbolFunction)
	}

	return nil
}

// defineGlobals collects every name bound outside a function, in the order of
// its first binding.
func (r *Resolver) defineGlobals(prog *Program) error {
	var visit func(stmt Stmt) error
	visitBlock := func(b *Block) error {
		if b == nil {
			return nil
		}

		for _, s := range b.Stmts {
			if err := visit(s); err != nil {
				return err
			}
		}

		return nil
	}

	define := func(name string, loc *Location) error {
		if isReserved(name) {
			return &ReservedIdentifier{Loc: loc, Name: name}
		}

		kind, exists := r.globals.Get(name)
		if !exists {
			r.globals.Add(name, SymbolGlobal)
			r.table.Globals = append(r.table.Globals, name)
			return nil
		}

		if kind == SymbolFunction {
			return &DuplicateDeclaration{Loc: loc, Name: name}
		}

		return nil
	}

	visit = func(stmt Stmt) error {
		switch s := stmt.(type) {
		case *LetStmt:
			return define(s.Name, s.Loc)
		case *AssignStmt:
			return define(s.Name, s.Loc)
		case *InputStmt:
			return define(s.Name, s.Loc)
		case *Block:
			return visitBlock(s)
		case *IfStmt:
			if err := visitBlock(s.Then); err != nil {
				return err
			}

			return visitBlock(s.Else)
		case *WhileStmt:
			return visitBlock(s.Body)
		}

		return nil
	}

	for _, stmt := range prog.Statements {
		if _, ok := stmt.(*FuncDecl); ok {
			continue
		}

		if err := visit(stmt); err != nil {
			return err
		}
	}

	return nil
}

func (r *Resolver) function(fd *FuncDecl) error {
	info := r.table.Functions[fd.Name]

	prevScope := r.scope
	r.scope = NewScope(r.globals)
	r.fn = info
	r.shadowed = letNames(fd.Body)

	defer func() {
		r.scope = prevScope
		r.fn = nil
		r.shadowed = nil
	}()

	for _, param := range fd.Params {
		if isReserved(param.Name) {
			return &ReservedIdentifier{Loc: param.Loc, Name: param.Name}
		}

		if _, exists := r.scope.GetLocal(param.Name); exists {
			return &DuplicateDeclaration{Loc: param.Loc, Name: param.Name}
		}

		if kind, _ := r.globals.Get(param.Name); kind == SymbolFunction {
			return &DuplicateDeclaration{Loc: param.Loc, Name: param.Name}
		}

		r.scope.Add(param.Name, SymbolParam)
	}

	return r.block(fd.Body)
}

func (r *Resolver) block(b *Block) error {
	if b == nil {
		return nil
	}

	for _, stmt := range b.Stmts {
		if err := r.stmt(stmt); err != nil {
			return err
		}
	}

	return nil
}

func (r *Resolver) stmt(stmt Stmt) error {
	switch s := stmt.(type) {
	case *LetStmt:
		if s.Value != nil {
			if err := r.expr(s.Value); err != nil {
				return err
			}
		}

		return r.bind(s.Name, s.Loc, true)
	case *AssignStmt:
		if err := r.expr(s.Value); err != nil {
			return err
		}

		return r.bind(s.Name, s.Loc, false)
	case *InputStmt:
		return r.bind(s.Name, s.Loc, false)
	case *PrintStmt:
		if s.IsString {
			return nil
		}

		return r.expr(s.Value)
	case *IfStmt:
		if err := r.expr(s.Cond); err != nil {
			return err
		}

		if err := r.block(s.Then); err != nil {
			return err
		}

		return r.block(s.Else)
	case *WhileStmt:
		if err := r.expr(s.Cond); err != nil {
			return err
		}

		return r.block(s.Body)
	case *ReturnStmt:
		if s.Value == nil {
			return nil
		}

		return r.expr(s.Value)
	case *ExprStmt:
		return r.expr(s.X)
	case *Block:
		return r.block(s)
	case *BreakStmt:
		return nil
	}

	return nil
}

// bind records a write to name. Outside functions every write targets a
// global. Inside a function a write targets the parameter or local of that
// name, then the global, and otherwise declares a new local. A let always
// declares a local.
func (r *Resolver) bind(name string, loc *Location, isLet bool) error {
	if r.fn == nil {
		r.scope.Add(name, SymbolGlobal)
		return nil
	}

	if _, exists := r.scope.GetLocal(name); exists {
		return nil
	}

	if !isLet && !r.shadowed[name] {
		if kind, _ := r.globals.Get(name); kind == SymbolGlobal {
			return nil
		}
	}

	if isReserved(name) {
		return &ReservedIdentifier{Loc: loc, Name: name}
	}

	if kind, _ := r.globals.Get(name); kind == SymbolFunction {
		return &DuplicateDeclaration{Loc: loc, Name: name}
	}

	r.scope.Add(name, SymbolLocal)
	r.fn.Locals = append(r.fn.Locals, name)
	return nil
}

func (r *Resolver) expr(expr Expr) error {
	switch e := expr.(type) {
	case *NumberLit:
		return nil
	case *Identifier:
		return r.read(e)
	case *BinaryExpr:
		if err := r.expr(e.Op1); err != nil {
			return err
		}

		return r.expr(e.Op2)
	case *UnaryExpr:
		return r.expr(e.Operand)
	case *FuncCall:
		return r.call(e)
	}

	return nil
}

func (r *Resolver) read(id *Identifier) error {
	if r.fn != nil {
		if _, exists := r.scope.GetLocal(id.Name); exists {
			return nil
		}

		// A let anywhere in the body makes the name local for the whole
		// function, so reading it before that point is a use before
		// declaration.
		if r.shadowed[id.Name] {
			return &UndeclaredIdentifier{Loc: id.Loc, Name: id.Name}
		}
	}

	if kind, exists := r.scope.Get(id.Name); exists && kind != SymbolFunction {
		return nil
	}

	return &UndeclaredIdentifier{Loc: id.Loc, Name: id.Name}
}

func (r *Resolver) call(call *FuncCall) error {
	info := r.table.Functions[call.Name]
	if info == nil {
		return &UndefinedFunction{Loc: call.Loc, Name: call.Name}
	}

	if len(call.Args) != len(info.Params) {
		return &ArityMismatch{
			Loc:      call.Loc,
			Callee:   call.Name,
			Expected: len(info.Params),
			Got:      len(call.Args),
		}
	}

	for _, arg := range call.Args {
		if err := r.expr(arg); err != nil {
			return err
		}
	}

	if r.fn != nil && !contains(r.fn.Calls, call.Name) {
		r.fn.Calls = append(r.fn.Calls, call.Name)
	}

	return nil
}

// letNames returns the names declared with let anywhere in b.
func letNames(b *Block) map[string]bool {
	names := make(map[string]bool)

	var visit func(b *Block)
	visit = func(b *Block) {
		if b == nil {
			return
		}

		for _, stmt := range b.Stmts {
			switch s := stmt.(type) {
			case *LetStmt:
				names[s.Name] = true
			case *Block:
				visit(s)
			case *IfStmt:
				visit(s.Then)
				visit(s.Else)
			case *WhileStmt:
				visit(s.Body)
			}
		}
	}

	visit(b)
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}
