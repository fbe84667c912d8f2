/*
 * Copyright 2024 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

const postPayload string = "`{\"name\": \"${name}\"}`"

const indexTmpl string = `<html>
  <head>
    <title>HP iLO Exporter</title>
    <style>
      .links, .build-info {
        display: flex;
      }
      h3, p {
        padding-right: 1em;
      }
      label {
        display: inline-block;
        width: 75px;
      }
      form label {
        margin: 10px;
      }
      form input {
        margin: 10px;
      }
    </style>
  </head>
  <body>
    <h1>HP iLO Exporter</h1>
    <div class="build-info">
      <p><b>build date:</b> {{ .Date }}</p>
      <p><b>revision:</b> {{ .GitRevision }}</p>
      <p><b>version:</b> {{ .GitVersion }}</p>
    </div>
    <div class="links">
      <h3><a href="targets">Targets</a></h3>
      <h3><a href="metrics">Metrics</a></h3>
    </div>
    <form action="scrape">
      <label>Target:</label> <input type="text" name="target" placeholder="registered target name"><br>
      <input type="submit" value="Submit">
    </form>
  </body>
</html>
`

const targetsTmpl string = `<html>
<head>
  <title>HP iLO Exporter</title>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@4.6.1/dist/css/bootstrap.min.css">
  <script src="https://cdn.jsdelivr.net/npm/jquery@3.6.0/dist/jquery.slim.min.js"></script>
  <script src="https://cdn.jsdelivr.net/npm/popper.js@1.16.1/dist/umd/popper.min.js"></script>
  <script src="https://cdn.jsdelivr.net/npm/bootstrap@4.6.1/dist/js/bootstrap.bundle.min.js"></script>
  <script src="https://ajax.googleapis.com/ajax/libs/jquery/3.6.0/jquery.min.js"></script>
  <style>
    .error-text {
      color: red;
      font-style: oblique;
    }
    .disabled-text {
      color: grey;
      font-style: oblique;
    }
    h1 {
      padding: 1rem;
    }
    h3 {
      padding-left: 1rem;
    }
    form {
      padding-left: 2rem;
    }
    form label {
      display: inline-block;
      width: 75px;
    }
    form input {
      margin: 5px;
    }
  </style>
</head>
<body>
  <h1>Registered Targets</h1>
  <h3><a href="../">Home</a></h3>
  <div>
    <ul>
      {{range .}}
      <li>{{.Name}} ({{ .Address }})
        {{if not .Enabled}}<span class="disabled-text">disabled</span>{{end}}
        <button type="button" onclick="window.location='scrape?target={{ .Name }}'">Scrape</button>
        <button type="button" onclick="remove('{{ .Name }}')">Remove</button>
        <div style="display: inline" id="{{ .Name }}-error" class="error-text" hidden></div>
      </li>
      {{end}}
    </ul>
  </div>
  <form onsubmit="return add()">
    <label>Name:</label> <input type="text" id="add-name" placeholder="grouping name"><br>
    <label>Address:</label> <input type="text" id="add-address" placeholder="ip or fqdn"><br>
    <label>Profile:</label> <input type="text" id="add-profile" placeholder="credential profile"><br>
    <input type="submit" value="Add">
    <div style="display: inline" id="add-error" class="error-text" hidden></div>
  </form>
<script>
  function remove(name) {
    const errorText = document.getElementById(name+"-error")

    $.post("targets/remove", ` + postPayload + `, (data, status) => {
      if (status === "success") {
        location.reload();
      }
    }).fail((data) => {
      errorText.hidden = false;
      errorText.innerHTML = data.responseText;
    });
  }

  function add() {
    const errorText = document.getElementById("add-error")
    const payload = {
      name: document.getElementById("add-name").value,
      address: document.getElementById("add-address").value,
      credential_profile: document.getElementById("add-profile").value,
    }

    $.post("targets/add", JSON.stringify(payload), (data, status) => {
      if (status === "success") {
        location.reload();
      }
    }).fail((data) => {
      const resp = JSON.parse(data.responseText)
      errorText.hidden = false;
      errorText.innerHTML = resp.error;
    });

    return false;
  }
</script>
</body>
</html>
`
