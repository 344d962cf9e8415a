package http

// ScopeBranch expone scopeBranch a los tests de http_test.
var ScopeBranch = scopeBranch
